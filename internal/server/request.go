package server

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/config"
)

// ErrBadRequest marks a malformed request body.
var ErrBadRequest = errors.New("bad request")

// executeRequest is the body of POST /v1/execute and POST /v1/validate.
type executeRequest struct {
	Input       string
	ContentType string
	Source      string
	Debug       bool
	History     bool
	Commands    []textflow.Invocation
}

// parseRequest decodes body with gjson so "args" objects keep their key
// order. A command is either a command-line string, an object with an
// ordered "args" object, or an object with an "arguments" array of
// {key, value} pairs.
func parseRequest(body []byte) (*executeRequest, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrBadRequest)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrBadRequest)
	}

	req := &executeRequest{
		Input:       root.Get("input").String(),
		ContentType: root.Get("contentType").String(),
		Source:      root.Get("source").String(),
		Debug:       root.Get("debug").Bool(),
		History:     root.Get("history").Bool(),
	}

	cmds := root.Get("commands")
	if cmds.Exists() && !cmds.IsArray() {
		return nil, fmt.Errorf("%w: commands must be an array", ErrBadRequest)
	}

	var err error
	cmds.ForEach(func(key, value gjson.Result) bool {
		var inv textflow.Invocation
		inv, err = parseCommand(value)
		if err != nil {
			err = fmt.Errorf("%w: commands[%d]: %v", ErrBadRequest, key.Int(), err)
			return false
		}
		req.Commands = append(req.Commands, inv)
		return true
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func parseCommand(v gjson.Result) (textflow.Invocation, error) {
	if v.Type == gjson.String {
		return config.ParseCommandLine(v.Str)
	}
	if !v.IsObject() {
		return textflow.Invocation{}, errors.New("command must be a string or an object")
	}

	inv := textflow.Invocation{Name: v.Get("name").String()}
	if inv.Name == "" {
		return inv, errors.New("command name cannot be empty")
	}

	var err error
	add := func(key string, val gjson.Result) bool {
		s, ok := scalar(val)
		if !ok {
			err = fmt.Errorf("argument %q must be a scalar", key)
			return false
		}
		inv.Arguments = append(inv.Arguments, textflow.Argument{Key: key, Value: s})
		return true
	}

	if args := v.Get("args"); args.Exists() {
		if !args.IsObject() {
			return inv, errors.New("args must be an object")
		}
		args.ForEach(func(k, val gjson.Result) bool { return add(k.String(), val) })
	}
	if args := v.Get("arguments"); args.Exists() {
		if !args.IsArray() {
			return inv, errors.New("arguments must be an array")
		}
		args.ForEach(func(_, pair gjson.Result) bool {
			return add(pair.Get("key").String(), pair.Get("value"))
		})
	}
	return inv, err
}

func scalar(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.Null:
		return "", true
	case gjson.String:
		return v.Str, true
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw, true
	}
	return "", false
}
