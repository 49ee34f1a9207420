// Package assets classifies media references by extension and routes each
// kind to its handler.
//
// Kinds are a closed set. Images go through the thumbnail engine, sounds are
// rewritten to the configured flash player, and everything else passes
// through with the per-kind default attributes applied:
//
//	d := assets.NewDispatcher(assets.DefaultConfig(), engine)
//	res, err := d.Process("/media/intro.swf", nil)
//	// res.Kind == assets.KindFlash, res.Attrs == wmode=opaque
//
// Handler errors are returned to the caller, never swallowed.
package assets
