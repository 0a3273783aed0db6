package loader

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	protoreg "github.com/gamekit/protoreg"
	"github.com/gamekit/protoreg/registry"
	"github.com/gamekit/protoreg/resource"
)

type sword struct {
	Damage int             `json:"damage"`
	Reach  float64         `json:"reach" default:"1.5"`
	Icon   resource.Handle `json:"icon"`
}

type potion struct {
	Restores string `json:"restores" enum:"health,mana"`
	Amount   int    `json:"amount"`
}

func newTestLoader(t *testing.T, opts ...Option) (*Loader, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	registry.MustRegister[sword](reg, "sword")
	registry.MustRegister[potion](reg, "potion")

	l, err := New(reg, opts...)
	require.NoError(t, err)
	return l, reg
}

func TestNewRequiresRegistry(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestLoadDocumentRoundTrip(t *testing.T) {
	l, reg := newTestLoader(t)

	doc := []byte(`[
		{"type": "sword", "name": "excalibur", "tags": ["legendary"], "damage": 42},
		{"type": "potion", "name": "elixir", "restores": "health", "amount": 10}
	]`)

	res, err := l.LoadDocument(context.Background(), "protos/items.protos.json", doc)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Loaded)
	assert.Empty(t, res.Errors)
	assert.NotEqual(t, res.Batch.String(), "00000000-0000-0000-0000-000000000000")

	rec, ok := registry.GetByName[sword](reg, "excalibur")
	require.True(t, ok)
	assert.Equal(t, "excalibur", rec.Name.Name())
	assert.Equal(t, []string{"legendary"}, rec.Tags)
	assert.Equal(t, 42, rec.Data.Damage)
	assert.Equal(t, 1.5, rec.Data.Reach, "absent field takes its default")

	pot, ok := registry.GetByName[potion](reg, "elixir")
	require.True(t, ok)
	assert.Equal(t, "health", pot.Data.Restores)
}

func TestLoadDocumentSingleRecordForm(t *testing.T) {
	l, reg := newTestLoader(t)

	doc := []byte(`{"type": "potion", "name": "mana draught", "restores": "mana", "amount": 3}`)
	res, err := l.LoadDocument(context.Background(), "protos/potion.proto.json", doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)

	_, ok := registry.GetByName[potion](reg, "mana draught")
	assert.True(t, ok)
}

func TestLoadDocumentMalformedIsFatal(t *testing.T) {
	l, reg := newTestLoader(t)

	res, err := l.LoadDocument(context.Background(), "protos/bad.proto.json", []byte(`"just a string"`))
	require.ErrorIs(t, err, protoreg.ErrMalformedDocument)
	assert.Equal(t, 0, res.Loaded)

	swordType, ok := reg.Resolve("sword")
	require.True(t, ok)
	assert.Equal(t, 0, reg.Len(swordType))
}

func TestUnknownDiscriminantSkipsRecordOnly(t *testing.T) {
	l, reg := newTestLoader(t)

	doc := []byte(`[
		{"type": "wand", "name": "stick", "charge": 3},
		{"type": "sword", "name": "claymore", "damage": 7}
	]`)
	res, err := l.LoadDocument(context.Background(), "protos/mixed.protos.json", doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, protoreg.ErrUnknownDiscriminant)
	assert.Equal(t, "stick", res.Errors[0].Name)

	_, ok := registry.GetByName[sword](reg, "claymore")
	assert.True(t, ok)
}

func TestFieldErrorSkipsRecordOnly(t *testing.T) {
	l, reg := newTestLoader(t)

	doc := []byte(`[
		{"type": "sword", "name": "broken", "damage": "a lot"},
		{"type": "sword", "name": "fine", "damage": 3}
	]`)
	res, err := l.LoadDocument(context.Background(), "protos/swords.protos.json", doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, protoreg.ErrFieldDecode)

	var fieldErr *FieldError
	require.ErrorAs(t, res.Errors[0].Err, &fieldErr)
	assert.Equal(t, "damage", fieldErr.Field)

	_, ok := registry.GetByName[sword](reg, "fine")
	assert.True(t, ok)
}

func TestMissingNameSkipsRecord(t *testing.T) {
	l, _ := newTestLoader(t)

	doc := []byte(`{"type": "sword", "damage": 1}`)
	res, err := l.LoadDocument(context.Background(), "protos/anon.proto.json", doc)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Loaded)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, protoreg.ErrMissingName)
}

func TestDuplicateIdentifierSkipsSecond(t *testing.T) {
	l, reg := newTestLoader(t)

	doc := []byte(`[
		{"type": "sword", "name": "twin", "damage": 1},
		{"type": "sword", "name": "twin", "damage": 2}
	]`)
	res, err := l.LoadDocument(context.Background(), "protos/twins.protos.json", doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, protoreg.ErrDuplicateIdentifier)

	rec, ok := registry.GetByName[sword](reg, "twin")
	require.True(t, ok)
	assert.Equal(t, 1, rec.Data.Damage, "first record wins")
}

func TestReferenceFieldResolvesAgainstDocument(t *testing.T) {
	fsys := fstest.MapFS{
		"assets/icons/foo.png": {Data: []byte("png bytes")},
	}
	l, reg := newTestLoader(t, WithResourceLoader(resource.NewFSLoader(fsys)))

	doc := []byte(`{"type": "sword", "name": "rapier", "damage": 2, "icon": "../icons/foo.png"}`)
	res, err := l.LoadDocument(context.Background(), "assets/protos/sword.proto.json", doc)
	require.NoError(t, err)
	require.Equal(t, 1, res.Loaded)

	rec, ok := registry.GetByName[sword](reg, "rapier")
	require.True(t, ok)
	assert.Equal(t, "assets/icons/foo.png", rec.Data.Icon.Path())

	data, err := rec.Data.Icon.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
}

func TestReferenceFieldWithoutResourceLoader(t *testing.T) {
	l, _ := newTestLoader(t)

	doc := []byte(`{"type": "sword", "name": "iconless", "icon": "a.png"}`)
	res, err := l.LoadDocument(context.Background(), "protos/s.proto.json", doc)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Loaded)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0].Err, protoreg.ErrFieldDecode)
}

func TestLoadFileYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"protos/potion.proto.yaml": {Data: []byte(
			"type: potion\nname: tonic\nrestores: health\namount: 5\n")},
	}
	l, reg := newTestLoader(t)

	res, err := l.LoadFile(context.Background(), fsys, "protos/potion.proto.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)

	rec, ok := registry.GetByName[potion](reg, "tonic")
	require.True(t, ok)
	assert.Equal(t, 5, rec.Data.Amount)
}

func TestLoadFileMissing(t *testing.T) {
	l, _ := newTestLoader(t)

	_, err := l.LoadFile(context.Background(), fstest.MapFS{}, "nope.proto.json")
	require.Error(t, err)

	var perr *protoreg.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, protoreg.KindResource, perr.Kind)
}

func TestLoadDirWalksMatchingFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"protos/swords.protos.json": {Data: []byte(
			`[{"type": "sword", "name": "a", "damage": 1}, {"type": "sword", "name": "b", "damage": 2}]`)},
		"protos/potion.proto.yaml": {Data: []byte(
			"type: potion\nname: p\nrestores: mana\namount: 1\n")},
		"protos/tonic.proto.yml": {Data: []byte(
			"type: potion\nname: q\nrestores: health\namount: 2\n")},
		"protos/readme.md":  {Data: []byte("not a document")},
		"protos/other.json": {Data: []byte("{}")},
	}
	l, reg := newTestLoader(t)

	results, err := l.LoadDir(context.Background(), fsys, "protos")
	require.NoError(t, err)
	assert.Len(t, results, 3, "only matching extensions load")

	swordType, _ := reg.Resolve("sword")
	potionType, _ := reg.Resolve("potion")
	assert.Equal(t, 2, reg.Len(swordType))
	assert.Equal(t, 2, reg.Len(potionType))
}

func TestLoadDirJoinsDocumentErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"protos/bad.proto.json":  {Data: []byte(`17`)},
		"protos/good.proto.json": {Data: []byte(`{"type": "sword", "name": "ok", "damage": 1}`)},
	}
	l, reg := newTestLoader(t)

	results, err := l.LoadDir(context.Background(), fsys, "protos")
	require.ErrorIs(t, err, protoreg.ErrMalformedDocument)
	assert.Len(t, results, 2)

	swordType, _ := reg.Resolve("sword")
	assert.Equal(t, 1, reg.Len(swordType), "the good document still loads")
}

func TestLoadDocumentEmitsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	l, _ := newTestLoader(t, WithTracerProvider(tp))

	doc := []byte(`{"type": "sword", "name": "traced", "damage": 1}`)
	_, err := l.LoadDocument(context.Background(), "protos/t.proto.json", doc)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "protoreg.load_document", spans[0].Name)

	var source string
	for _, attr := range spans[0].Attributes {
		if string(attr.Key) == "document.source" {
			source = attr.Value.AsString()
		}
	}
	assert.Equal(t, "protos/t.proto.json", source)
}
