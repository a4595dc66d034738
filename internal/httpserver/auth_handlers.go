package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"lostfound/internal/service"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary      Sign up
// @Description  Create an unverified account and send a verification email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body signupRequest true "Signup input"
// @Success      201  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /users/signup [post]
func handleSignup(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if _, err := authSvc.Signup(r.Context(), service.SignupInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		}); err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{
			"message": "Signup successful! Check your email to verify your account.",
		})
	}
}

// @Summary      Verify email
// @Tags         users
// @Produce      json
// @Param        token query string true "Verification token"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /users/verify [get]
func handleVerify(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if err := authSvc.Verify(r.Context(), token); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified"})
	}
}

// @Summary      Login
// @Description  Verify credentials and set the session cookie
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body loginRequest true "Login input"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /users/login [post]
func handleLogin(authSvc *service.AuthService, cookieName string, ttl time.Duration, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		res, err := authSvc.Login(r.Context(), service.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    res.AccessToken,
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{
			"message":     "Login successful",
			"redirect_to": res.RedirectTo,
		})
	}
}

// @Summary      Logout
// @Tags         users
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /users/logout [post]
func handleLogout(cookieName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
	}
}

// @Summary      Current user
// @Tags         users
// @Security     CookieAuth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /users/me [get]
func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// @Summary      My items
// @Description  Items created by the current user, claimant resolved
// @Tags         users
// @Security     CookieAuth
// @Produce      json
// @Success      200  {array}  service.ItemResponse
// @Router       /users/items [get]
func handleMyItems(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := itemSvc.MyItems(r.Context(), CurrentUser(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": itemSvc.ToResponses(r.Context(), items)})
	}
}
