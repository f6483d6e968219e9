package testutil

import (
	"github.com/Masterminds/semver/v3"

	"github.com/roach88/francagen/internal/ir"
)

// MediaPackage returns a small model with one interface and one type
// collection. Declarations of the type collection are listed so that
// reordering is required: Playlist references Track, which references
// Artist, and both are declared before what they use.
func MediaPackage() *ir.Package {
	two := "2"
	return &ir.Package{
		Name:    "org.example.media",
		Imports: []ir.Import{{Namespace: "Common"}},
		Interfaces: []*ir.Container{
			{
				Kind:    ir.ContainerInterface,
				Name:    "Player",
				Version: semver.MustParse("1.2"),
				Structs: []*ir.Struct{
					{Name: "State", Fields: []ir.Field{
						{Name: "track", Type: ir.MustParseTypeRef("Types.Track")},
						{Name: "position", Type: ir.MustParseTypeRef("UInt32")},
					}},
				},
				Enumerations: []*ir.Enumeration{
					{Name: "Mode", Enumerators: []ir.Enumerator{{Name: "Normal"}, {Name: "Shuffle", Value: &two}}},
				},
				Attributes: []*ir.Attribute{
					{Name: "volume", Type: ir.MustParseTypeRef("UInt8")},
				},
				Methods: []*ir.Method{
					{
						Name: "play",
						In:   []ir.Field{{Name: "track", Type: ir.MustParseTypeRef("Types.Track")}},
						Out:  []ir.Field{{Name: "ok", Type: ir.MustParseTypeRef("Boolean")}},
					},
				},
			},
		},
		TypeCollections: []*ir.Container{
			{
				Kind:    ir.ContainerTypeCollection,
				Name:    "Types",
				Version: semver.MustParse("1.0"),
				Structs: []*ir.Struct{
					{Name: "Playlist", Fields: []ir.Field{
						{Name: "name", Type: ir.MustParseTypeRef("String")},
						{Name: "tracks", Type: ir.MustParseTypeRef("Track[]")},
					}},
					{Name: "Track", Fields: []ir.Field{
						{Name: "title", Type: ir.MustParseTypeRef("String")},
						{Name: "artist", Type: ir.MustParseTypeRef("Artist")},
					}},
				},
				Typedefs: []*ir.Typedef{
					{Name: "Artist", Type: ir.MustParseTypeRef("String")},
				},
				Maps: []*ir.Map{
					{Name: "Index", Key: ir.MustParseTypeRef("String"), Value: ir.MustParseTypeRef("Playlist")},
				},
			},
		},
	}
}
