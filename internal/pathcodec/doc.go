// Package pathcodec derives the cache-relative file name of a transformed
// media asset and maps cache-relative names to storage paths and public URLs.
//
// A derived name keeps the source directory and base name readable and tags
// the transform parameters in a fixed order:
//
//	photos/photo.jpg + {width: 50, height: 40, method: crop, format: JPG}
//	    -> photos/photo_jpg__w50_h40_mc.jpg
//
// The tag order (width, height, method) is part of the on-disk layout of
// existing caches and must not change. Names are not hashed, so two
// different parameter sets can only collide through pathological inputs.
//
// [ParseDerived] reverses the naming far enough to find the source of a
// cached file, which is what orphan pruning needs.
package pathcodec
