package langsync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v2"
)

// codec converts between a locale store and its file representation.
type codec interface {
	Decode(data []byte, store *LocaleStore) error
	Encode(store *LocaleStore, sorted bool) ([]byte, error)
}

const jsonIndent = "    "

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonCodec{}, nil
	case ".yaml", ".yml":
		return yamlCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported store format %q", filepath.Ext(path))
	}
}

// IsStoreFile reports whether path has an extension a locale store can use.
func IsStoreFile(path string) bool {
	_, err := codecFor(path)
	return err == nil
}

type jsonCodec struct{}

// Decode reads a flat JSON object of strings, keeping document order.
// Duplicate keys keep their first position and their last value.
func (jsonCodec) Decode(data []byte, store *LocaleStore) error {
	text, ok := decodeText(data)
	if !ok {
		return fmt.Errorf("%w: not UTF-8 text", ErrMalformedStore)
	}
	if !gjson.Valid(text) {
		return fmt.Errorf("%w: invalid JSON", ErrMalformedStore)
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return fmt.Errorf("%w: top level value must be an object", ErrMalformedStore)
	}
	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			err = fmt.Errorf("%w: value of %q is not a string", ErrMalformedStore, key.String())
			return false
		}
		store.Set(key.String(), value.String())
		return true
	})
	return err
}

// Encode writes the store as a JSON object indented by four spaces, with
// non-ASCII characters kept literal and a trailing newline.
func (jsonCodec) Encode(store *LocaleStore, sorted bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range store.Keys(sorted) {
		if i > 0 {
			buf.WriteByte(',')
		}
		value, _ := store.Get(key)
		if err := writeJSONString(&buf, key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	out := pretty.PrettyOptions(buf.Bytes(), &pretty.Options{Width: 80, Indent: jsonIndent})
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	return out, nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(unescapeLineSeparators(bytes.TrimSuffix(tmp.Bytes(), []byte("\n"))))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes encoding/json
// always emits back into the literal characters. Escapes are read pairwise so
// an escaped backslash followed by "u2028" is left alone.
func unescapeLineSeparators(quoted []byte) []byte {
	if !bytes.Contains(quoted, []byte(`\u202`)) {
		return quoted
	}
	out := make([]byte, 0, len(quoted))
	for i := 0; i < len(quoted); i++ {
		c := quoted[i]
		if c != '\\' || i+1 >= len(quoted) {
			out = append(out, c)
			continue
		}
		if rest := quoted[i+1:]; bytes.HasPrefix(rest, []byte("u2028")) || bytes.HasPrefix(rest, []byte("u2029")) {
			if rest[4] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, c, quoted[i+1])
		i++
	}
	return out
}

type yamlCodec struct{}

// Decode reads a flat YAML mapping. Scalar values of any type are kept as
// their text; nested mappings and sequences are rejected.
func (yamlCodec) Decode(data []byte, store *LocaleStore) error {
	text, ok := decodeText(data)
	if !ok {
		return fmt.Errorf("%w: not UTF-8 text", ErrMalformedStore)
	}
	var doc yaml.MapSlice
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedStore, err)
	}
	for _, item := range doc {
		key, err := scalarText(item.Key)
		if err != nil {
			return fmt.Errorf("%w: key: %v", ErrMalformedStore, err)
		}
		value, err := scalarText(item.Value)
		if err != nil {
			return fmt.Errorf("%w: value of %q: %v", ErrMalformedStore, key, err)
		}
		store.Set(key, value)
	}
	return nil
}

func (yamlCodec) Encode(store *LocaleStore, sorted bool) ([]byte, error) {
	doc := make(yaml.MapSlice, 0, store.Len())
	for _, key := range store.Keys(sorted) {
		value, _ := store.Get(key)
		doc = append(doc, yaml.MapItem{Key: key, Value: value})
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scalarText accepts the scalar kinds yaml.v2 produces and returns their text.
func scalarText(v interface{}) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("must be a scalar, got %T", v)
	}
}
