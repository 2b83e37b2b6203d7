package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onedesigner/onedesigner/core/binder"
	"github.com/onedesigner/onedesigner/core/handler"
	"github.com/onedesigner/onedesigner/core/response"
	"github.com/onedesigner/onedesigner/core/router"
	"github.com/onedesigner/onedesigner/core/validator"
	"github.com/onedesigner/onedesigner/internal/marketplace"
	"github.com/onedesigner/onedesigner/internal/payments"
)

func (a *API) registerClient(ctx *router.Context) handler.Response {
	var in marketplace.RegisterClientInput
	if err := a.bind(ctx.Request(), &in); err != nil {
		return response.Error(err)
	}
	c, err := a.svc.RegisterClient(ctx, in)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.Created(c)
}

func (a *API) applyDesigner(ctx *router.Context) handler.Response {
	var in marketplace.DesignerApplication
	if err := a.bind(ctx.Request(), &in); err != nil {
		return response.Error(err)
	}
	d, err := a.svc.ApplyDesigner(ctx, in)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.Created(d.Profile())
}

func (a *API) clientDashboard(ctx *router.Context) handler.Response {
	id, err := clientID(ctx)
	if err != nil {
		return response.Error(err)
	}
	d, err := a.svc.ClientDashboard(ctx, id)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.JSON(d)
}

func (a *API) submitBrief(ctx *router.Context) handler.Response {
	id, err := clientID(ctx)
	if err != nil {
		return response.Error(err)
	}
	var in marketplace.BriefInput
	if err := a.bind(ctx.Request(), &in); err != nil {
		return response.Error(err)
	}
	b, err := a.svc.SubmitBrief(ctx, id, in)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.Created(b)
}

func (a *API) findMatches(ctx *router.Context) handler.Response {
	return a.matches(ctx, a.svc.FindMatches)
}

func (a *API) briefMatches(ctx *router.Context) handler.Response {
	return a.matches(ctx, a.svc.BriefMatches)
}

type matchFetcher func(ctx context.Context, clientID, briefID uuid.UUID) ([]marketplace.MatchView, error)

func (a *API) matches(ctx *router.Context, fetch matchFetcher) handler.Response {
	client, err := clientID(ctx)
	if err != nil {
		return response.Error(err)
	}
	brief, err := pathID(ctx, "id")
	if err != nil {
		return response.Error(err)
	}
	views, err := fetch(ctx, client, brief)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.JSON(map[string]any{"brief_id": brief, "matches": views})
}

func (a *API) unlockMatch(ctx *router.Context) handler.Response {
	client, err := clientID(ctx)
	if err != nil {
		return response.Error(err)
	}
	match, err := pathID(ctx, "id")
	if err != nil {
		return response.Error(err)
	}
	res, err := a.svc.UnlockMatch(ctx, client, match)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.JSON(res)
}

type projectRequestBody struct {
	Message string `json:"message"`
}

func (a *API) sendProjectRequest(ctx *router.Context) handler.Response {
	client, err := clientID(ctx)
	if err != nil {
		return response.Error(err)
	}
	match, err := pathID(ctx, "id")
	if err != nil {
		return response.Error(err)
	}
	var body projectRequestBody
	if err := a.bind(ctx.Request(), &body); err != nil {
		return response.Error(err)
	}
	req, err := a.svc.SendProjectRequest(ctx, client, match, body.Message)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.Created(req)
}

func (a *API) designerRequests(ctx *router.Context) handler.Response {
	id, err := designerID(ctx)
	if err != nil {
		return response.Error(err)
	}
	reqs, err := a.svc.DesignerRequests(ctx, id)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.JSON(map[string]any{"requests": reqs})
}

type respondBody struct {
	Approve *bool  `json:"approve"`
	Message string `json:"message"`
}

func (a *API) respondToRequest(ctx *router.Context) handler.Response {
	designer, err := designerID(ctx)
	if err != nil {
		return response.Error(err)
	}
	reqID, err := pathID(ctx, "id")
	if err != nil {
		return response.Error(err)
	}
	var body respondBody
	if err := a.bind(ctx.Request(), &body); err != nil {
		return response.Error(err)
	}
	if body.Approve == nil {
		return response.Error(validator.ValidationErrors{{Field: "approve", Message: "field is required"}})
	}
	res, err := a.svc.RespondToProjectRequest(ctx, designer, reqID, *body.Approve, body.Message)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.JSON(res)
}

type designerFilter struct {
	Status string `query:"status"`
}

func (a *API) listDesigners(ctx *router.Context) handler.Response {
	var f designerFilter
	if err := binder.Query()(ctx.Request(), &f); err != nil {
		return response.Error(err)
	}
	designers, err := a.svc.ListDesigners(ctx, marketplace.DesignerStatus(strings.ToLower(f.Status)))
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.JSON(map[string]any{"designers": designers})
}

func (a *API) approveDesigner(ctx *router.Context) handler.Response {
	id, err := pathID(ctx, "id")
	if err != nil {
		return response.Error(err)
	}
	d, err := a.svc.ApproveDesigner(ctx, id)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.JSON(d)
}

type rejectBody struct {
	Reason string `json:"reason"`
}

func (a *API) rejectDesigner(ctx *router.Context) handler.Response {
	id, err := pathID(ctx, "id")
	if err != nil {
		return response.Error(err)
	}
	var body rejectBody
	if err := a.bind(ctx.Request(), &body); err != nil {
		return response.Error(err)
	}
	d, err := a.svc.RejectDesigner(ctx, id, body.Reason)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.JSON(d)
}

func (a *API) stats(ctx *router.Context) handler.Response {
	s, err := a.svc.Stats(ctx)
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.JSON(s)
}

func (a *API) emailStatsHandler(ctx *router.Context) handler.Response {
	if a.emailStats == nil {
		return response.Error(response.ErrNotImplemented.WithMessage("email service not configured"))
	}
	return response.JSON(a.emailStats())
}

func (a *API) deadLettersHandler(ctx *router.Context) handler.Response {
	if a.deadLetters == nil {
		return response.Error(response.ErrNotImplemented.WithMessage("dead letter listing not available"))
	}
	items, err := a.deadLetters(ctx)
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(map[string]any{"dead_letters": items})
}

type authEmailBody struct {
	Email      string `json:"email" validate:"required;email"`
	Code       string `json:"code" validate:"required;max:12"`
	TTLSeconds int    `json:"ttl_seconds" validate:"min:0"`
}

// authEmail lets the auth provider deliver sign-in codes through our
// templates and queue.
func (a *API) authEmail(ctx *router.Context) handler.Response {
	var body authEmailBody
	if err := a.bind(ctx.Request(), &body); err != nil {
		return response.Error(err)
	}
	if err := validator.ValidateStruct(&body); err != nil {
		return response.Error(err)
	}
	ttl := time.Duration(body.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if err := a.loginCodes.LoginCode(ctx, body.Email, body.Code, ttl); err != nil {
		return response.Error(response.ErrServiceUnavailable.WithError(err))
	}
	return response.JSONWithStatus(map[string]string{"status": "queued"}, http.StatusAccepted)
}

func (a *API) lemonSqueezy(ctx *router.Context) handler.Response {
	r := ctx.Request()
	body, err := io.ReadAll(http.MaxBytesReader(ctx.ResponseWriter(), r.Body, a.webhook.MaxBodyBytes()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return response.Error(binder.ErrBodyTooLarge)
		}
		return response.Error(payments.ErrInvalidPayload)
	}
	res, err := a.webhook.Handle(ctx, body, r.Header.Get(payments.SignatureHeader))
	if err != nil {
		return response.Error(mapError(err))
	}
	return response.JSON(res)
}
