package scraper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) []any {
	t.Helper()
	parsed, err := Parse(text)
	require.NoError(t, err)
	return parsed
}

func TestDecodePhotoCanonOnlyMake(t *testing.T) {
	t.Parallel()

	rec, err := DecodePhoto(mustParse(t, photoManifestCanon), "https://page/abc", VariantService)
	require.NoError(t, err)

	assert.Equal(t, "https://img/1", rec.Link)
	assert.Empty(t, rec.Image)
	assert.Equal(t, 100, rec.Width)
	assert.Equal(t, 200, rec.Height)
	require.NotNil(t, rec.TakenTimestamp)
	assert.Equal(t, int64(1690000000000), *rec.TakenTimestamp)
	require.NotNil(t, rec.AddedTimestamp)
	assert.Equal(t, int64(1690000500000), *rec.AddedTimestamp)
	require.NotNil(t, rec.Description)
	assert.Equal(t, "Sunset over the bay", *rec.Description)
	assert.Equal(t, Exif{Make: "Canon"}, rec.Exif)

	encoded, err := json.Marshal(rec)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(encoded, &fields))
	assert.Equal(t, "Canon", fields["make"])
	for _, absent := range []string{"model", "lens", "focal_length", "aperture", "iso", "shutter_speed", "image"} {
		assert.NotContains(t, fields, absent)
	}
}

func TestDecodePhotoIngestVariantLinksPage(t *testing.T) {
	t.Parallel()

	rec, err := DecodePhoto(mustParse(t, photoManifestCanon), "https://page/abc", VariantIngest)
	require.NoError(t, err)
	assert.Equal(t, "https://page/abc", rec.Link)
	assert.Equal(t, "https://img/1", rec.Image)
}

func TestDecodePhotoFullExif(t *testing.T) {
	t.Parallel()

	manifest := `[["x",["https://img/2",4000,3000,0,0,0,0,0,[1,2,3,4,["FUJIFILM","X-T4","XF23mmF2 R WR",23,2.8,640,0.004]]],0]]`
	rec, err := DecodePhoto(mustParse(t, manifest), "https://page/x", VariantService)
	require.NoError(t, err)

	assert.Equal(t, Exif{
		Make:         "FUJIFILM",
		Model:        "X-T4",
		Lens:         "XF23mmF2 R WR",
		FocalLength:  23,
		Aperture:     2.8,
		ISO:          640,
		ShutterSpeed: 0.004,
	}, rec.Exif)
	require.NotNil(t, rec.TakenTimestamp, "zero timestamps are present, not null")
	assert.Equal(t, int64(0), *rec.TakenTimestamp)
	assert.Nil(t, rec.AddedTimestamp)
	assert.Nil(t, rec.Description)
}

func TestDecodePhotoNullsStayNull(t *testing.T) {
	t.Parallel()

	rec, err := DecodePhoto(mustParse(t, `[["x",["https://img/3",10,20]]]`), "p", VariantService)
	require.NoError(t, err)

	encoded, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"link":"https://img/3","width":10,"height":20,"takenTimestamp":null,"addedTimestamp":null,"description":null}`, string(encoded))
}

func TestDecodePhotoFalsyExifDropped(t *testing.T) {
	t.Parallel()

	manifest := `[["x",["https://img/4",1,1,null,null,null,null,null,[null,null,null,null,["",null,"",0,0,0,false]]],null,null,null,null,null,null,null,null,{"396644657":[""]}]]`
	rec, err := DecodePhoto(mustParse(t, manifest), "p", VariantService)
	require.NoError(t, err)
	assert.Equal(t, Exif{}, rec.Exif)
	assert.Nil(t, rec.Description, "empty description decodes as null")
}

func TestDecodePhotoMissingRequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
	}{
		{name: "empty root", manifest: `[]`},
		{name: "no info node", manifest: `[["x"]]`},
		{name: "info not an array", manifest: `[["x","oops"]]`},
		{name: "image url missing", manifest: `[["x",[null,1,1]]]`},
		{name: "width missing", manifest: `[["x",["https://img",null,1]]]`},
		{name: "height zero", manifest: `[["x",["https://img",1,0]]]`},
		{name: "width fractional", manifest: `[["x",["https://img",1.5,1]]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodePhoto(mustParse(t, tt.manifest), "p", VariantService)
			require.ErrorIs(t, err, ErrDecodeFailed)
		})
	}
}

func TestDecodePhotoIsDeterministic(t *testing.T) {
	t.Parallel()

	parsed := mustParse(t, photoManifestCanon)
	first, err := DecodePhoto(parsed, "p", VariantIngest)
	require.NoError(t, err)
	second, err := DecodePhoto(parsed, "p", VariantIngest)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeAlbumEntries(t *testing.T) {
	t.Parallel()

	parsed := mustParse(t, `[["abc",[1]],["def"],[null],[],"stray",[42],[""]]`)
	assert.Equal(t, []string{"abc", "def", "42"}, DecodeAlbumEntries(parsed))
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	assert.False(t, truthy(nil))
	assert.False(t, truthy(false))
	assert.False(t, truthy(""))
	assert.False(t, truthy(json.Number("0")))
	assert.False(t, truthy(json.Number("0.0")))
	assert.True(t, truthy(true))
	assert.True(t, truthy("x"))
	assert.True(t, truthy(json.Number("-1")))
	assert.True(t, truthy([]any{}))
	assert.True(t, truthy(map[string]any{}))
}
