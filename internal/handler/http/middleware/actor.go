package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/access"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
	"github.com/cmlabs-hris/absence-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// Actor resolves the access.Actor from verified JWT claims and stores it in
// the request context. It must run after AuthRequired.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Failed to extract claims from context")
			return
		}

		userID, _ := claims["user_id"].(string)
		employeeID, _ := claims["employee_id"].(string)
		companyID, _ := claims["company_id"].(string)
		roleStr, _ := claims["role"].(string)

		role := user.Role(roleStr)
		if userID == "" || !role.Valid() {
			response.Unauthorized(w, invalidTokenMessage)
			return
		}
		if employeeID == "" {
			response.HandleError(w, user.ErrEmployeeIDRequired)
			return
		}
		if companyID == "" {
			response.HandleError(w, user.ErrCompanyIDRequired)
			return
		}
		if !validator.IsValidUUID(employeeID) || !validator.IsValidUUID(companyID) {
			response.Unauthorized(w, invalidTokenMessage)
			return
		}

		actor := access.Actor{
			UserID:     userID,
			EmployeeID: employeeID,
			CompanyID:  companyID,
			Role:       role,
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func WithActor(ctx context.Context, actor access.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by the Actor middleware.
func ActorFromContext(ctx context.Context) (access.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(access.Actor)
	return actor, ok
}
