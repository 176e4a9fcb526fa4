// Package imageio decodes source images and encodes carve results.
//
// Decoding goes through [github.com/disintegration/imaging] with EXIF
// auto-orientation, so a portrait JPEG straight from a phone is carved the
// way it is displayed. BMP, TIFF and WebP decoders from golang.org/x/image
// are registered alongside the standard library ones.
//
// Dimensions are checked from the header before any pixels are decoded:
//
//	img, format, err := imageio.DecodeBytes(data)
//	if err != nil {
//	    return err
//	}
//	// ... carve img ...
//	err = imageio.Save("out.png", carved)
package imageio
