package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"PartnerWebserver/internal/auth"
	"PartnerWebserver/internal/domain"
	"PartnerWebserver/internal/service"
)

type LastSeenStore interface {
	SetLastSeen(ctx context.Context, username string, when time.Time) error
}

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth          *service.AuthService
	Trips         *service.TripService
	Invites       *service.InviteService
	Messages      *service.MessageService
	Feed          *service.FeedService
	Follows       *service.FollowService
	Users         *service.UsersService
	Profile       *service.ProfileService
	Notifications *service.NotificationService
	LastSeen      LastSeenStore

	Realtime http.Handler

	CookieCodec  auth.CookieCodec
	CookieSecure bool
	SessionTTL   time.Duration
	AvatarDir    string
	TripPhotoDir string
	PostDir      string
	UploadsDir   string
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.AvatarDir == "" {
		opts.AvatarDir = "data/uploads/avatars"
	}
	if opts.TripPhotoDir == "" {
		opts.TripPhotoDir = "data/uploads/trips"
	}
	if opts.PostDir == "" {
		opts.PostDir = "data/uploads/posts"
	}
	if opts.UploadsDir == "" {
		opts.UploadsDir = "data/uploads"
	}

	api := &api{
		logger:          logger,
		isProd:          opts.IsProd,
		dbPing:          opts.DBPing,
		authSvc:         opts.Auth,
		tripSvc:         opts.Trips,
		inviteSvc:       opts.Invites,
		messageSvc:      opts.Messages,
		feedSvc:         opts.Feed,
		followSvc:       opts.Follows,
		usersSvc:        opts.Users,
		profileSvc:      opts.Profile,
		notificationSvc: opts.Notifications,
		lastSeenStore:   opts.LastSeen,
		avatarDir:       opts.AvatarDir,
		tripPhotoDir:    opts.TripPhotoDir,
		postDir:         opts.PostDir,
		cookieCodec:     opts.CookieCodec,
		cookieSecure:    opts.CookieSecure,
		sessionTTL:      opts.SessionTTL,
		loginLimiter:    newLoginLimiter(),
	}

	publicMux := http.NewServeMux()
	apiMux := http.NewServeMux()

	publicMux.HandleFunc("GET /healthz", api.handleHealthz)
	publicMux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(opts.UploadsDir))))

	apiMux.HandleFunc("POST /v1/auth/register", api.handleAuthRegister)
	apiMux.HandleFunc("POST /v1/auth/login", api.handleAuthLogin)
	apiMux.HandleFunc("POST /v1/auth/logout", api.requireAuth(api.handleAuthLogout))
	apiMux.HandleFunc("GET /v1/users/me", api.requireAuth(api.handleUsersMe))

	if api.profileSvc != nil {
		apiMux.HandleFunc("PATCH /v1/users/me", api.requireAuth(api.handleUsersMeUpdate))
		apiMux.HandleFunc("POST /v1/users/me/avatar", api.requireAuth(api.handleUsersMeAvatar))
	}
	if api.usersSvc != nil {
		apiMux.HandleFunc("GET /v1/users/search", api.requireAuth(api.handleUsersSearch))
		apiMux.HandleFunc("GET /v1/users/{username}/profile", api.requireAuth(api.handleUsersProfile))
		apiMux.HandleFunc("POST /v1/reviews", api.requireAuth(api.handleReviewCreate))
		apiMux.HandleFunc("POST /v1/reports", api.requireAuth(api.handleReportCreate))
	}

	if api.tripSvc != nil {
		apiMux.HandleFunc("POST /v1/trips", api.requireAuth(api.handleTripCreate))
		apiMux.HandleFunc("GET /v1/trips", api.requireAuth(api.handleTripList))
		apiMux.HandleFunc("GET /v1/trips/mine", api.requireAuth(api.handleTripMine))
		apiMux.HandleFunc("GET /v1/trips/{id}", api.requireAuth(api.handleTripGet))
		apiMux.HandleFunc("PATCH /v1/trips/{id}", api.requireAuth(api.handleTripUpdate))
		apiMux.HandleFunc("DELETE /v1/trips/{id}", api.requireAuth(api.handleTripDelete))
		apiMux.HandleFunc("POST /v1/trips/{id}/join", api.requireAuth(api.handleTripJoin))
		apiMux.HandleFunc("POST /v1/trips/{id}/photos", api.requireAuth(api.handleTripPhotoUpload))
		apiMux.HandleFunc("GET /v1/trips/{id}/photos", api.requireAuth(api.handleTripPhotoList))
	}

	if api.inviteSvc != nil {
		apiMux.HandleFunc("POST /v1/trips/{id}/invitations", api.requireAuth(api.handleTripInvite))
		apiMux.HandleFunc("GET /v1/trips/{id}/invite-candidates", api.requireAuth(api.handleTripInviteCandidates))
		apiMux.HandleFunc("POST /v1/invitations/{id}/respond", api.requireAuth(api.handleInvitationRespond))
		apiMux.HandleFunc("GET /v1/invitations/pending", api.requireAuth(api.handleInvitationsPending))
	}

	if api.messageSvc != nil {
		apiMux.HandleFunc("GET /v1/conversations", api.requireAuth(api.handleConversations))
		apiMux.HandleFunc("GET /v1/conversations/candidates", api.requireAuth(api.handleConversationCandidates))
		apiMux.HandleFunc("GET /v1/messages/{username}", api.requireAuth(api.handleThread))
		apiMux.HandleFunc("POST /v1/messages", api.requireAuth(api.handleMessageSend))
		apiMux.HandleFunc("POST /v1/messages/{username}/typing", api.requireAuth(api.handleTypingMark))
		apiMux.HandleFunc("GET /v1/messages/{username}/typing", api.requireAuth(api.handleTypingCheck))
	}

	if api.feedSvc != nil {
		apiMux.HandleFunc("POST /v1/posts", api.requireAuth(api.handlePostCreate))
		apiMux.HandleFunc("GET /v1/feed", api.requireAuth(api.handleFeed))
		apiMux.HandleFunc("GET /v1/explore", api.requireAuth(api.handleExplore))
		apiMux.HandleFunc("GET /v1/hashtags/{tag}", api.requireAuth(api.handleHashtag))
		apiMux.HandleFunc("GET /v1/users/{username}/posts", api.requireAuth(api.handleUserPosts))
		apiMux.HandleFunc("GET /v1/posts/{id}", api.requireAuth(api.handlePostGet))
		apiMux.HandleFunc("PATCH /v1/posts/{id}", api.requireAuth(api.handlePostUpdate))
		apiMux.HandleFunc("DELETE /v1/posts/{id}", api.requireAuth(api.handlePostDelete))
		apiMux.HandleFunc("POST /v1/posts/{id}/like", api.requireAuth(api.handlePostLike))
		apiMux.HandleFunc("POST /v1/posts/{id}/comments", api.requireAuth(api.handlePostComment))
	}

	if api.followSvc != nil {
		apiMux.HandleFunc("POST /v1/users/{username}/follow", api.requireAuth(api.handleFollow))
		apiMux.HandleFunc("DELETE /v1/users/{username}/follow", api.requireAuth(api.handleUnfollow))
		apiMux.HandleFunc("GET /v1/users/{username}/follows", api.requireAuth(api.handleFollowLists))
	}

	if api.notificationSvc != nil {
		apiMux.HandleFunc("GET /v1/notifications", api.requireAuth(api.handleNotificationsList))
		apiMux.HandleFunc("GET /v1/notifications/unread-count", api.requireAuth(api.handleNotificationsUnreadCount))
		apiMux.HandleFunc("POST /v1/notifications/tokens", api.requireAuth(api.handleNotificationsTokenUpsert))
		apiMux.HandleFunc("DELETE /v1/notifications/tokens", api.requireAuth(api.handleNotificationsTokenDelete))
	}

	if opts.Realtime != nil {
		publicMux.Handle("GET /ws", opts.Realtime)
	}

	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := apiMux.Handler(r)
		if pattern == "" {
			handleV1NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/v1" {
			apiHandler.ServeHTTP(w, r)
			return
		}
		publicMux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc         *service.AuthService
	tripSvc         *service.TripService
	inviteSvc       *service.InviteService
	messageSvc      *service.MessageService
	feedSvc         *service.FeedService
	followSvc       *service.FollowService
	usersSvc        *service.UsersService
	profileSvc      *service.ProfileService
	notificationSvc *service.NotificationService
	lastSeenStore   LastSeenStore
	lastSeen        lastSeenTracker

	avatarDir    string
	tripPhotoDir string
	postDir      string
	cookieCodec  auth.CookieCodec
	cookieSecure bool
	sessionTTL   time.Duration

	loginLimiter *loginLimiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}

// SessionIdentifier builds the identity callback the WebSocket handler
// uses at upgrade time: same cookie, same session lookup as requireAuth.
func SessionIdentifier(codec auth.CookieCodec, authSvc *service.AuthService) func(*http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		c, err := r.Cookie(auth.SessionCookieName)
		if err != nil || c.Value == "" {
			return "", domain.ErrUnauthorized
		}
		sessID, ok := codec.DecodeSessionID(c.Value)
		if !ok {
			return "", domain.ErrUnauthorized
		}
		u, err := authSvc.GetUserForSession(r.Context(), sessID)
		if err != nil {
			return "", err
		}
		return u.Username, nil
	}
}
