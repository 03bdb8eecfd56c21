package restconf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// A payload is a decoded YANG data tree: map[string]interface{} for
// containers and list entries, []interface{} for lists and leaf-lists,
// strings, bools or json.Number for leaves.

func decodeJSON(body []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON document")
	}
	return v, nil
}

// decodeXML converts a yang-data+xml document into the same tree shape as
// the JSON decoder produces. Element names lose their namespace prefix,
// repeated siblings become lists and leaves become strings.
func decodeXML(body []byte) (interface{}, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return map[string]interface{}{root.Tag: xmlValue(root)}, nil
}

func xmlValue(el *etree.Element) interface{} {
	children := el.ChildElements()
	if len(children) == 0 {
		return strings.TrimSpace(el.Text())
	}
	obj := make(map[string]interface{}, len(children))
	for _, child := range children {
		v := xmlValue(child)
		switch prev := obj[child.Tag].(type) {
		case nil:
			obj[child.Tag] = v
		case []interface{}:
			obj[child.Tag] = append(prev, v)
		default:
			obj[child.Tag] = []interface{}{prev, v}
		}
	}
	return obj
}

// lookup finds a member of a container by qualified ("module:name") or
// bare name. An exact match wins over a prefix-stripped one.
func lookup(v interface{}, name string) (interface{}, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	if child, ok := obj[name]; ok {
		return child, true
	}
	local := localName(name)
	for key, child := range obj {
		if localName(key) == local {
			return child, true
		}
	}
	return nil, false
}

// lookupPath walks nested containers.
func lookupPath(v interface{}, names ...string) (interface{}, bool) {
	for _, name := range names {
		var ok bool
		if v, ok = lookup(v, name); !ok {
			return nil, false
		}
	}
	return v, true
}

func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// asList normalizes a list node. A single entry (as XML yields, or as some
// servers encode a one-element list) becomes a one-element slice.
func asList(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	default:
		return []interface{}{t}
	}
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func asBool(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	}
	return false, false
}

func asUint32(v interface{}) uint32 {
	n, err := strconv.ParseUint(asString(v), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

func field(v interface{}, name string) string {
	child, _ := lookup(v, name)
	return asString(child)
}

// errorMessage extracts the first error-message from an RFC 8040 errors
// document, in either encoding.
func errorMessage(body []byte, xml bool) string {
	var (
		tree interface{}
		err  error
	)
	if xml {
		tree, err = decodeXML(body)
	} else {
		tree, err = decodeJSON(body)
	}
	if err != nil {
		return ""
	}
	errs, ok := lookupPath(tree, "ietf-restconf:errors", "error")
	if !ok {
		return ""
	}
	for _, e := range asList(errs) {
		if msg := field(e, "error-message"); msg != "" {
			return msg
		}
		if tag := field(e, "error-tag"); tag != "" {
			return tag
		}
	}
	return ""
}
