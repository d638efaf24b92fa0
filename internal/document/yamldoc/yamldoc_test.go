package yamldoc_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/facet/internal/aspect"
	"github.com/roach88/facet/internal/document/yamldoc"
)

type event struct {
	Seq     int64     `aspect:"seq,attr"`
	Name    string    `aspect:"name,mandatory"`
	Payload string    `aspect:"payload"`
	At      time.Time `aspect:"at,element"`
	Retries int32     `aspect:"retries,mandatory"`
}

var eventMapping = aspect.MustFor[event]()

func TestNode_RoundTrip(t *testing.T) {
	in := event{
		Seq:     12,
		Name:    "Hello <b>World</b>",
		Payload: "line one\nline two\n",
		At:      time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	root := yamldoc.New()
	require.NoError(t, eventMapping.Write(in, root, nil))

	out, err := root.Marshal()
	require.NoError(t, err)

	parsed, err := yamldoc.Parse(out)
	require.NoError(t, err)

	var got event
	require.NoError(t, eventMapping.Read(&got, parsed, nil))
	assert.Equal(t, in.Seq, got.Seq)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Payload, got.Payload)
	assert.True(t, in.At.Equal(got.At))
	assert.Zero(t, got.Retries)
}

func TestNode_Layout(t *testing.T) {
	root := yamldoc.New()
	require.NoError(t, eventMapping.Write(event{Seq: 1, Payload: "a\nb"}, root, nil))

	n := root.YAML()
	require.Equal(t, yaml.MappingNode, n.Kind)
	var keys []string
	for i := 0; i < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	assert.Equal(t, []string{"@seq", "name", "payload", "retries"}, keys)

	payload, ok := root.Child("payload")
	require.True(t, ok)
	assert.Equal(t, "a\nb", payload.Text())
	assert.Equal(t, yaml.LiteralStyle, n.Content[5].Style)

	name, ok := root.Child("name")
	require.True(t, ok)
	assert.Equal(t, "", name.Text(), "mandatory empty member is a present null")
	assert.Equal(t, "!!null", n.Content[3].ShortTag())
}

func TestNode_ReadHandWritten(t *testing.T) {
	doc := []byte(`
"@seq": 5
name: plain
retries: 3
`)
	parsed, err := yamldoc.Parse(doc)
	require.NoError(t, err)

	got := event{Payload: "kept"}
	require.NoError(t, eventMapping.Read(&got, parsed, nil))
	assert.Equal(t, event{Seq: 5, Name: "plain", Retries: 3, Payload: "kept"}, got)
}

func TestNode_ReadError(t *testing.T) {
	parsed, err := yamldoc.Parse([]byte("retries: many\n"))
	require.NoError(t, err)

	var got event
	err = eventMapping.Read(&got, parsed, nil)
	var readErr *aspect.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "retries", readErr.Member)
	assert.Equal(t, "many", readErr.Text)
}

func TestParse(t *testing.T) {
	n, err := yamldoc.Parse(nil)
	require.NoError(t, err)
	_, ok := n.Child("x")
	assert.False(t, ok)

	_, err = yamldoc.Parse([]byte("- a\n- b\n"))
	assert.Error(t, err)

	_, err = yamldoc.Parse([]byte("a: [unclosed"))
	assert.Error(t, err)
}

func TestNode_NestedAndReplace(t *testing.T) {
	root := yamldoc.New()
	parent := root.AppendChild("parent")
	parent.SetText("dropped")
	parent.AppendChild("child").SetText("v")
	parent.SetAttr("k", "1")

	p, ok := root.Child("parent")
	require.True(t, ok)
	assert.Equal(t, "", p.Text())
	c, ok := p.Child("child")
	require.True(t, ok)
	assert.Equal(t, "v", c.Text())
	k, ok := p.Attr("k")
	assert.True(t, ok)
	assert.Equal(t, "1", k)

	root.AppendChild("parent").SetText("replaced")
	p, _ = root.Child("parent")
	assert.Equal(t, "replaced", p.Text())
	assert.Len(t, root.YAML().Content, 2)
}

func TestNode_WhitespacePayloadRoundTrip(t *testing.T) {
	for _, s := range []string{"\n", "\n\n", " ", "  \n ", "\t", "a\n", "  lead\ntrail  \n"} {
		t.Run(strconv.Quote(s), func(t *testing.T) {
			root := yamldoc.New()
			require.NoError(t, eventMapping.Write(event{Name: s}, root, nil))

			out, err := root.Marshal()
			require.NoError(t, err)
			parsed, err := yamldoc.Parse(out)
			require.NoError(t, err)

			var got event
			require.NoError(t, eventMapping.Read(&got, parsed, nil))
			assert.Equal(t, s, got.Name, "yaml:\n%s", out)
		})
	}
}
