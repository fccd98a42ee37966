package server

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mediareviews/internal/domain/review"
	"mediareviews/internal/domain/upload"
	"mediareviews/internal/middleware"
	"mediareviews/internal/pkg/jwt"
	"mediareviews/internal/pkg/response"
	"mediareviews/internal/ratelimit"
)

// Deps is everything the router needs. Optional parts are nil when
// disabled: Limiter, Tokens, Metrics.
type Deps struct {
	Log            zerolog.Logger
	AllowedOrigins []string
	UploadMount    string
	Assets         upload.Store
	Reviews        *review.Handler

	Limiter  ratelimit.Limiter
	Tokens   *jwt.Service
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(d.Log),
		middleware.CORS(d.AllowedOrigins),
	)

	if d.Metrics != nil {
		r.Use(d.Metrics.Handler())
		gatherer := d.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "healthy"})
	})

	mountAssets(r, d.UploadMount, d.Assets, d.Log)

	api := r.Group("")
	if d.Tokens != nil {
		api.Use(middleware.IdentifyService(d.Tokens))
	}
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter))
	}
	protected := api.Group("")
	if d.Tokens != nil {
		protected.Use(middleware.ServiceAuth(d.Tokens))
	}
	d.Reviews.RegisterRoutes(api, protected)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Not Found")
	})
	return r
}

// mountAssets serves stored images under /{mount}/reviews/{id}/{file}.
func mountAssets(r *gin.Engine, mount string, assets upload.Store, log zerolog.Logger) {
	prefix := "/" + strings.Trim(mount, "/")
	switch s := assets.(type) {
	case *upload.LocalStore:
		r.Static(prefix, s.Root())
	case *upload.MinioStore:
		r.GET(prefix+"/*filepath", serveObject(s))
		r.HEAD(prefix+"/*filepath", serveObject(s))
	default:
		log.Warn().Msg("asset store cannot be served over HTTP; image_url links will 404")
	}
}

func serveObject(store *upload.MinioStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rel := strings.TrimPrefix(path.Clean(c.Param("filepath")), "/")
		if rel == "" || rel == "." || !strings.HasPrefix(rel, upload.ReviewsDir+"/") {
			response.Error(c, http.StatusNotFound, "Not Found")
			return
		}

		obj, info, err := store.Open(c.Request.Context(), rel)
		if err != nil {
			response.Error(c, http.StatusNotFound, "Not Found")
			return
		}
		defer obj.Close()

		if info.ContentType != "" {
			c.Header("Content-Type", info.ContentType)
		}
		http.ServeContent(c.Writer, c.Request, path.Base(rel), info.LastModified, obj)
	}
}
