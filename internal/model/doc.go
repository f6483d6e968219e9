// Package model loads declaration models from CUE and YAML files into
// ir.Package values.
//
// Both formats share one document shape:
//
//	packages: {
//		"org.example.media": {
//			imports: ["Common"]
//			typeCollections: {
//				Types: {
//					version: "1.0"
//					structs: Track: {title: "String", artists: "Artist[]"}
//					enumerations: Color: {enumerators: {Red: null, Green: 2}}
//					typedefs: Id: "UInt64"
//					arrays: Playlist: "Track"
//					maps: Index: {key: "String", value: "Track"}
//				}
//			}
//			interfaces: {
//				Player: {
//					attributes: volume: "UInt8"
//					methods: play: {in: {track: "Types.Track"}, out: {ok: "Boolean"}}
//				}
//			}
//		}
//	}
//
// Field order inside each map is source order and is preserved, since it
// decides declaration and member order in the generated output.
//
// Loading is permissive by default: a file that fails to load contributes no
// packages and its error is logged, while the remaining files are processed.
// Options.Strict turns the first failure into a hard error.
package model
