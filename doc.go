// Package asks prompts an operator for a schema of named fields, one field
// at a time, and returns the resolved values.
//
// A schema lists fields in prompt order. Each field may carry checks,
// transforms, a type, a default and a retry budget:
//
//	s := asks.NewSchema(
//	    schema.Define("name", schema.Required(), schema.Validate(schema.MustMatch(`^\w+$`))),
//	    schema.Define("port", schema.OfType("integer"), schema.Default(8080)),
//	    schema.Define("tls", schema.OfType("boolean"), schema.Default("Y/n")),
//	)
//	result, err := asks.New().Get(ctx, s)
//
// A failed check is reported and the field asked again until its budget runs
// out. Canceling input (Ctrl+C, closed stdin) ends the batch at once; the
// error then matches ErrCanceled. Listeners registered with On replace the
// built-in reporting for their event.
package asks
