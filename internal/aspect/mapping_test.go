package aspect

import (
	"bytes"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facet/internal/accessor"
	"github.com/roach88/facet/internal/registry"
)

type order struct {
	ID       int64     `aspect:"id,mandatory,attr"`
	Customer string    `aspect:"customer,mandatory"`
	Note     string    `aspect:"note"`
	Placed   time.Time `aspect:"placed,element"`
	Ref      uuid.UUID
	Internal string `aspect:"-"`
	State    status `aspect:"state"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestFor_FromTags(t *testing.T) {
	m, err := For[order]()
	require.NoError(t, err)
	assert.Equal(t, "order", m.Name())
	assert.Equal(t, reflect.TypeFor[order](), m.Owner())
	assert.Equal(t, AbortOnError, m.Policy())

	type shape struct {
		Name      string
		Mandatory bool
		Encoding  Encoding
	}
	var got []shape
	for _, mem := range m.Members() {
		got = append(got, shape{mem.Name(), mem.Mandatory(), mem.Encoding()})
	}
	want := []shape{
		{"id", true, Attribute},
		{"customer", true, CharData},
		{"note", false, CharData},
		{"placed", false, Element},
		{"Ref", false, CharData},
		{"state", false, CharData},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestFor_Options(t *testing.T) {
	m, err := For[order](WithName("purchase"), WithReadPolicy(SkipInvalid), WithRegistry(registry.New()))
	require.NoError(t, err)
	assert.Equal(t, "purchase", m.Name())
	assert.Equal(t, SkipInvalid, m.Policy())
}

func TestFor_FailsFast(t *testing.T) {
	type nested struct {
		Name  string
		Child struct{ X int }
	}
	_, err := For[nested]()
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrUnsupportedType)

	type badTag struct {
		Name string `aspect:"name,bogus"`
	}
	_, err = For[badTag]()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTag)

	type dup struct {
		A string `aspect:"x"`
		B string `aspect:"x"`
	}
	_, err = For[dup]()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateMember)

	_, err = For[int]()
	assert.Error(t, err)

	assert.Panics(t, func() { MustFor[badTag]() })
}

func TestMapping_WriteRead(t *testing.T) {
	m := MustFor[order]()
	in := order{
		ID:       9,
		Customer: "Hello <b>World</b>",
		Placed:   time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Ref:      uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Internal: "not mapped",
		State:    2,
	}
	root := newMemNode(m.Name())
	require.NoError(t, m.Write(in, root, nil))

	assert.Equal(t, []string{"customer", "placed", "Ref", "state"}, root.childNames())
	assert.Equal(t, "9", root.attrs["id"])

	var out order
	require.NoError(t, m.Read(&out, root, nil))
	in.Internal = ""
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMapping_ReadLeavesAbsentMembers(t *testing.T) {
	m := MustFor[order]()
	root := newMemNode(m.Name())
	root.AppendChild("customer").SetCharData("ACME")

	out := order{Note: "keep", ID: 5}
	require.NoError(t, m.Read(&out, root, nil))
	assert.Equal(t, "ACME", out.Customer)
	assert.Equal(t, "keep", out.Note)
	assert.Equal(t, int64(5), out.ID)
}

func TestMapping_AbortOnError(t *testing.T) {
	m := MustFor[order]()
	root := newMemNode(m.Name())
	root.SetAttr("id", "x")
	root.AppendChild("customer").SetCharData("ACME")

	var out order
	err := m.Read(&out, root, nil)
	require.Error(t, err)
	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "id", readErr.Member)
	assert.Empty(t, out.Customer, "members after the failure are not read")
}

func TestMapping_SkipInvalid(t *testing.T) {
	var logs bytes.Buffer
	m := MustFor[order](
		WithReadPolicy(SkipInvalid),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	root := newMemNode(m.Name())
	root.SetAttr("id", "x")
	root.AppendChild("customer").SetCharData("ACME")
	root.AppendChild("state").SetCharData("y")

	var out order
	err := m.Read(&out, root, nil)
	require.Error(t, err)
	assert.Equal(t, "ACME", out.Customer)

	msg := err.Error()
	assert.Contains(t, msg, `"id"`)
	assert.Contains(t, msg, `"state"`)
	assert.Equal(t, 2, strings.Count(logs.String(), "skipping invalid member"))
}

func TestMapping_InvalidEntity(t *testing.T) {
	m := MustFor[order](WithLogger(discardLogger()))
	root := newMemNode(m.Name())

	assert.ErrorIs(t, m.Write(nil, root, nil), ErrInvalidEntity)
	assert.ErrorIs(t, m.Write((*order)(nil), root, nil), ErrInvalidEntity)
	assert.ErrorIs(t, m.Write(ticket{}, root, nil), ErrInvalidEntity)

	assert.ErrorIs(t, m.Read(order{}, root, nil), ErrInvalidEntity)
	assert.ErrorIs(t, m.Read(&ticket{}, root, nil), ErrInvalidEntity)
}

func TestNewMapping_Validation(t *testing.T) {
	id := buildMember(t, "ID", "id", false)

	m, err := NewMapping(reflect.TypeFor[*ticket](), "ticket", id)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[ticket](), m.Owner())
	assert.Len(t, m.Members(), 1)

	_, err = NewMapping(reflect.TypeFor[order](), "order", id)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = NewMapping(reflect.TypeFor[ticket](), "ticket", id, id)
	assert.ErrorIs(t, err, ErrDuplicateMember)

	_, err = NewMapping(reflect.TypeFor[ticket](), "ticket", nil)
	assert.Error(t, err)

	_, err = NewMapping(reflect.TypeFor[string](), "s")
	assert.Error(t, err)
}

func TestMapping_WithCopies(t *testing.T) {
	m := MustFor[order]()
	skip := m.With(WithReadPolicy(SkipInvalid))
	assert.Equal(t, AbortOnError, m.Policy())
	assert.Equal(t, SkipInvalid, skip.Policy())
}

func TestMapping_Binary(t *testing.T) {
	m := MustFor[order]()
	in := order{
		ID:       -3,
		Customer: "ACME",
		Note:     "",
		Placed:   time.Date(2020, 1, 2, 3, 4, 5, 6, time.UTC),
		Ref:      uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		State:    1,
	}

	var buf bytes.Buffer
	require.NoError(t, m.WriteBinary(&buf, &in))

	var out order
	require.NoError(t, m.ReadBinary(&buf, &out))
	assert.Equal(t, 0, buf.Len(), "stream fully consumed")
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Customer, out.Customer)
	assert.True(t, in.Placed.Equal(out.Placed))
	assert.Equal(t, in.Ref, out.Ref)
	assert.Equal(t, in.State, out.State)

	err := m.ReadBinary(bytes.NewReader([]byte{1, 2}), &out)
	assert.Error(t, err)
}

type cart struct {
	total float64
}

func (c *cart) Total() float64     { return c.total }
func (c *cart) SetTotal(v float64) { c.total = v }

func TestMapping_PropertyMember(t *testing.T) {
	acc, err := accessor.For[cart]("Total")
	require.NoError(t, err)
	mem, err := BuildMember(registry.Default().MustLookup(acc.Type()), acc, "total", true)
	require.NoError(t, err)
	m, err := NewMapping(reflect.TypeFor[cart](), "cart", mem)
	require.NoError(t, err)

	root := newMemNode(m.Name())
	require.NoError(t, m.Write(cart{total: 19.5}, root, nil))
	assert.Equal(t, "19.5", root.child("total").text)

	var out cart
	require.NoError(t, m.Read(&out, root, nil))
	assert.Equal(t, 19.5, out.total)
}

func TestReadPolicy_String(t *testing.T) {
	assert.Equal(t, "abort", AbortOnError.String())
	assert.Equal(t, "skip", SkipInvalid.String())
	assert.Equal(t, "unknown", ReadPolicy(7).String())
}

func TestMapping_ConcurrentUse(t *testing.T) {
	m := MustFor[order](WithLogger(discardLogger()), WithReadPolicy(SkipInvalid))
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	const workers = 32
	errs := make([]error, workers)
	got := make([]order, workers)
	want := make([]order, workers)

	var wg sync.WaitGroup
	for i := range workers {
		want[i] = order{
			ID:       int64(i + 1),
			Customer: "customer " + strconv.Itoa(i),
			Note:     strings.Repeat("n", i),
			Placed:   base.Add(time.Duration(i) * time.Hour),
			Ref:      uuid.New(),
			State:    status(i),
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range 50 {
				root := newMemNode(m.Name())
				if errs[i] = m.Write(want[i], root, nil); errs[i] != nil {
					return
				}
				var out order
				if errs[i] = m.Read(&out, root, nil); errs[i] != nil {
					return
				}

				var buf bytes.Buffer
				if errs[i] = m.WriteBinary(&buf, &out); errs[i] != nil {
					return
				}
				got[i] = order{}
				if errs[i] = m.ReadBinary(&buf, &got[i]); errs[i] != nil {
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i], "worker %d", i)
		if diff := cmp.Diff(want[i], got[i]); diff != "" {
			t.Errorf("worker %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}
