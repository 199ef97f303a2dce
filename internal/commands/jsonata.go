package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jsonata "github.com/blues/jsonata-go"

	"github.com/alnah/textflow"
)

func jsonataQuery() *textflow.Command {
	return &textflow.Command{
		Name:        "jsonata",
		Title:       "JSONata Query",
		Description: "Apply a JSONata expression to transform JSON data.",
		Args: []textflow.ArgSpec{
			{Name: "expr", Type: "string", Description: "JSONata expression to evaluate"},
		},
		AllowedContentTypes: []string{"json"},
		Validators: []textflow.Validator{
			required("You must provide a JSONata expression.", "expr"),
			optional("The JSONata expression must compile.", func(v string) bool {
				_, err := jsonata.Compile(v)
				return err == nil
			}, "expr"),
		},
		Run: func(_ context.Context, w *textflow.WorkingData, inv *textflow.Invocation, _ *textflow.Pipeline) (textflow.Result, error) {
			expr, err := jsonata.Compile(inv.ArgOr("", "expr"))
			if err != nil {
				return nil, err
			}

			var data any
			if err := json.Unmarshal([]byte(w.Text), &data); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
			}

			result, err := expr.Eval(data)
			if errors.Is(err, jsonata.ErrUndefined) {
				return textflow.PatchText("", "application/json"), nil
			}
			if err != nil {
				return nil, err
			}

			out, err := json.Marshal(result)
			if err != nil {
				return nil, err
			}
			return textflow.PatchText(string(out), "application/json"), nil
		},
	}
}
