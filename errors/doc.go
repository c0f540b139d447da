// Package errors provides standardized error handling for joli components.
//
// # Overview
//
// Errors fall into three classes: Transient (temporary, retryable), Invalid (bad input,
// do not retry) and Fatal (unrecoverable, stop processing). Components wrap errors with
// their name and the failing operation so log lines and CLI messages read as
// "Component.Method: action failed: cause".
//
// # Domain Errors
//
// The parser and the style engine raise three error kinds, all classified as invalid:
//
//   - ParseError: strict JSON parse failure, or failure of a {...} span recovered from
//     noisy text. Matches ErrParse.
//   - StyleNotFoundError: a style name with no registry entry. Matches ErrStyleNotFound
//     and carries the missing name.
//   - EmptyReduceError: reduce over an empty sequence when the style has no seed.
//     Matches ErrEmptyReduce.
//
// Match the kind with errors.Is, or recover details with errors.As:
//
//	out, err := engine.Apply(data, style.Named("titles"))
//	var missing *errors.StyleNotFoundError
//	if errors.As(err, &missing) {
//	    fmt.Println("no such style:", missing.Name)
//	}
//
// A filter that rejects a scalar record is not an error; the engine returns an absent
// value instead.
//
// # Wrapping
//
//	if err := out.Output(ctx, v); err != nil {
//	    return errors.WrapTransient(err, "Webhook", "Output", "post payload")
//	}
//
// The core packages (parser, style) return their errors unwrapped to the immediate caller.
// Wrapping happens in the collaborators around them: registry, output, stream, config.
package errors
