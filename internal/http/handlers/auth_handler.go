package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pajakoo/kbiz-price-hunter/internal/http/middleware"
)

// RequestLinkRequest asks for a login link.
type RequestLinkRequest struct {
	Email  string `json:"email" example:"ana@example.com"`
	Locale string `json:"locale" example:"bg"`
}

// RequestLinkResponse confirms a login link was issued. MagicLink is only
// returned when the server is configured to expose it.
type RequestLinkResponse struct {
	OK        bool   `json:"ok" example:"true"`
	Message   string `json:"message" example:"Magic link sent."`
	Emailed   bool   `json:"emailed" example:"true"`
	MagicLink string `json:"magicLink,omitempty"`
}

// RequestLink godoc
// @ID          requestLink
// @Summary     Request a magic login link
// @Description Creates a single-use login link for the email and sends it when email delivery is configured.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RequestLinkRequest  true  "Email and dashboard locale"
// @Success     200  {object}  handlers.RequestLinkResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse  "Too many requests"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/request [post]
func (h *Handlers) RequestLink(c *gin.Context) {
	var req RequestLinkRequest
	bindJSON(c, &req)

	link, err := h.svc.Auth.RequestLink(c.Request.Context(), req.Email, req.Locale, c.GetHeader("Origin"))
	if err != nil {
		failErr(c, err, ErrCodeLoginFailed, "unable to send magic link right now")
		return
	}

	resp := RequestLinkResponse{OK: true, Emailed: link.Emailed, Message: "Magic link generated."}
	if link.Emailed {
		resp.Message = "Magic link sent."
	}
	if h.opts.ExposeLink {
		resp.MagicLink = link.Link
	}
	ok(c, http.StatusOK, resp)
}

// VerifyLink godoc
// @ID          verifyLink
// @Summary     Open a session from a magic link
// @Description Consumes the login token, sets the session cookie and redirects to the dashboard in the requested locale.
// @Tags        Auth
// @Produce     json
// @Param       token   query  string  true   "Login token"
// @Param       locale  query  string  false  "Dashboard locale"  Enums(en, bg)
// @Success     303  {string}  string  "Redirect to the dashboard"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid or expired token"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/verify [get]
func (h *Handlers) VerifyLink(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "missing token")
		return
	}

	sess, err := h.svc.Auth.Verify(c.Request.Context(), token, c.Query("locale"))
	if err != nil {
		failErr(c, err, ErrCodeLoginFailed, "unable to open session")
		return
	}

	h.setSessionCookie(c, sess.Token, sess.ExpiresAt)
	c.Redirect(http.StatusSeeOther, strings.TrimRight(h.opts.SiteURL, "/")+"/"+sess.Locale+"/dashboard")
}

// Logout godoc
// @ID          logout
// @Summary     End the current session
// @Description Deletes the session, if any, and clears the session cookie.
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  handlers.OKResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.svc.Auth.Logout(c.Request.Context(), middleware.SessionToken(c, h.opts.CookieName)); err != nil {
		failErr(c, err, ErrCodeInternal, "unable to log out")
		return
	}
	h.setSessionCookie(c, "", time.Unix(0, 0))
	ok(c, http.StatusOK, OKResponse{OK: true})
}

// setSessionCookie writes the HttpOnly session cookie; an empty value with
// a past expiry clears it.
func (h *Handlers) setSessionCookie(c *gin.Context, value string, expires time.Time) {
	ck := &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	http.SetCookie(c.Writer, ck)
}
