// Package textflow runs ordered lists of named text transformation commands
// over a mutable working document.
//
// # Quick Start
//
// Build a registry once, then execute a pipeline per input:
//
//	reg := textflow.NewRegistry()
//	reg.MustRegister(&textflow.Command{
//	    Name: "shout",
//	    Run: func(ctx context.Context, w *textflow.WorkingData, inv *textflow.Invocation, p *textflow.Pipeline) (textflow.Result, error) {
//	        return textflow.ReplaceText(strings.ToUpper(w.Text)), nil
//	    },
//	})
//
//	out := textflow.ExecutePipeline(ctx, reg, "hello", "", "", []textflow.Invocation{
//	    {Name: "shout"},
//	})
//	fmt.Println(out.Text) // HELLO
//
// # Execution Model
//
// Commands run strictly one at a time, in head, main, tail order:
//
//  1. Unknown command names are skipped and logged.
//  2. A failing validator discards the whole run and yields an empty document.
//  3. An error or panic inside a command body sets the sticky abort flag,
//     which also yields an empty document. Partial output is never returned.
//  4. Command results are merged back into the document: TextReplacement
//     swaps the text, FullReplacement swaps every field, PartialPatch
//     overwrites the fields it carries and shallow-merges the container.
//
// Execute never returns an error. Every path resolves to either the final
// document or a fresh empty one.
//
// # Lifecycle Signals
//
// Observers are called synchronously and in registration order at each
// lifecycle point. Returning false from a cancelable signal vetoes it:
//
//	textflow:pipeline-created    not cancelable
//	textflow:pipeline-starting   veto skips the whole run
//	textflow:command-starting    veto skips one command
//	textflow:command-finished    not cancelable
//	textflow:pipeline-finished   not cancelable
//	textflow:returning-data      veto replaces the result with an empty document
//
// # Content Types
//
// WorkingData.ResolvedContentType returns the explicit content type when set,
// falls back to the file extension, and finally sniffs the text as JSON, HTML,
// CSV or plain text.
package textflow
