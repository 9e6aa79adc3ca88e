// Package validation checks request payloads with go-playground/validator
// struct tags and reports failures as a 400 errors.AppError listing every
// failed field.
//
//	type SubmitRequest struct {
//	    Username string `json:"username" validate:"required,notblank,max=256,printable"`
//	}
//	if err := validation.Validate(req); err != nil {
//	    server.RespondWithError(c, err)
//	}
package validation
