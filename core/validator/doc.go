// Package validator checks request structs.
//
// Declarative rules live in `validate` tags, separated by semicolons:
//
//	type ApplyRequest struct {
//		Email     string   `json:"email" validate:"required;email"`
//		FirstName string   `json:"first_name" validate:"required;max:100"`
//		Styles    []string `json:"styles" validate:"required;max:10"`
//	}
//
//	if err := validator.ValidateStruct(&req); err != nil {
//		return response.Error(err) // 422 with per-field details
//	}
//
// Rules that depend on several fields are built in code with Apply:
//
//	err := validator.Apply(
//		validator.LessOrEqual("budget_min", b.BudgetMin, b.BudgetMax),
//		validator.OneOf("timeline", b.Timeline, timelines...),
//	)
package validator
