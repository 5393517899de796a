// Package letv resolves Letv (www.letv.com) page URLs into playable media.
//
// Three kinds of input are recognised:
//   - video pages (http://www.letv.com/ptv/vplay/<id>.html) resolve to a
//     VideoInfo whose formats are re-signed for third-party players
//   - show pages (http://www.letv.com/tv/<id>.html) and
//   - category pages (http://tv.letv.com/<x>/<slug>/index.html) list the
//     video pages they link to
//
// Playlist entries are returned unresolved. ResolveEntries resolves them
// independently, so one failing entry never stops the rest.
//
//	ex := letv.New().WithConcurrency(4)
//	res, err := ex.Resolve(ctx, "http://www.letv.com/tv/46177.html")
//	if err != nil {
//		return err
//	}
//	for _, r := range ex.ResolveEntries(ctx, res.Playlist.Entries) {
//		if r.Err != nil {
//			continue
//		}
//		fmt.Println(formats.SelectFormat(r.Info.Formats, "best").URL)
//	}
package letv
