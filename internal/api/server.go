// Package api serves the scoring pipeline over HTTP. Prediction endpoints
// depend only on the trained artifact; suggestion and corpus endpoints
// degrade to 503 when their collaborator is absent, so a scoring-only
// deployment stays useful.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pawlift/internal/corpus"
	"pawlift/internal/divergence"
	"pawlift/internal/feature"
	"pawlift/internal/predict"
	"pawlift/internal/replacement"
	"pawlift/internal/suggest"
)

// Config defines server dependencies.
type Config struct {
	Scorer       *predict.Scorer
	Orchestrator *suggest.Orchestrator
	Store        *corpus.DB
	CORSOrigins  []string
}

// Server wires HTTP handlers over scoring, suggestion, and the corpus.
type Server struct {
	scorer       *predict.Scorer
	orchestrator *suggest.Orchestrator
	store        *corpus.DB
	corsOrigins  []string
}

// NewServer constructs the API server. Orchestrator and Store may be nil;
// the endpoints needing them answer 503 while scoring keeps working.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Scorer == nil {
		return nil, errors.New("scorer required")
	}
	return &Server{
		scorer:       cfg.Scorer,
		orchestrator: cfg.Orchestrator,
		store:        cfg.Store,
		corsOrigins:  cfg.CORSOrigins,
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(s.corsOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.corsOrigins
		corsCfg.AllowCredentials = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api/v1")
	{
		api.POST("/score", s.handleScore)
		api.POST("/suggest", s.handleSuggest)
		api.GET("/divergence", s.handleDivergence)
		api.GET("/lexicon/split", s.handleLexiconSplit)
		api.GET("/replacements", s.handleReplacements)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleScore(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("text is required"))
		return
	}

	scored, err := s.scorer.Score(req.Text, req.Kind)
	if err != nil {
		// Artifact or schema trouble, never the text itself.
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, scoreFromPost(scored))
}

func (s *Server) handleSuggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("text is required"))
		return
	}
	if s.orchestrator == nil {
		s.renderError(c, http.StatusServiceUnavailable, suggest.ErrUnavailable)
		return
	}

	session, err := s.orchestrator.Suggest(c.Request.Context(), req.Text, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, suggest.ErrUnavailable):
			s.renderError(c, http.StatusServiceUnavailable, err)
		case errors.Is(err, suggest.ErrBudgetExhausted):
			s.renderError(c, http.StatusTooManyRequests, err)
		default:
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleDivergence(c *gin.Context) {
	if s.store == nil {
		s.renderError(c, http.StatusServiceUnavailable, errors.New("corpus store not configured"))
		return
	}
	ctx := c.Request.Context()
	schema := s.scorer.Extractor.Schema()

	dogs, err := loadVectors(ctx, s.store, schema, "dog")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	cats, err := loadVectors(ctx, s.store, schema, "cat")
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	contrasts, err := divergence.Compare(dogs, cats)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, DivergenceResponse{
		DogPosts:  len(dogs),
		CatPosts:  len(cats),
		Contrasts: contrasts,
	})
}

func (s *Server) handleLexiconSplit(c *gin.Context) {
	lex := divergence.DemoLexicon()
	words := splitWordsParam(c.Query("words"))
	if len(words) == 0 {
		words = lex.Words()
	}

	share, err := lex.Split(words)
	if err != nil {
		if errors.Is(err, divergence.ErrUndefined) {
			s.renderError(c, http.StatusBadRequest, err)
			return
		}
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, SplitResponse{Words: words, DogPct: share.DogPct, CatPct: share.CatPct})
}

func (s *Server) handleReplacements(c *gin.Context) {
	if s.store == nil {
		s.renderError(c, http.StatusServiceUnavailable, errors.New("corpus store not configured"))
		return
	}
	kind := strings.ToLower(strings.TrimSpace(c.Query("kind")))
	if kind == "" {
		kind = "dog"
	}
	if kind != "dog" && kind != "cat" {
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("unknown kind %q", kind))
		return
	}

	params, err := s.scorer.Handle.Params()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	kp, err := params.Kind(feature.Kind(kind))
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	posts, err := s.store.LoadPosts(c.Request.Context(), kind, false)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	var lowTexts, allTexts []string
	for _, p := range posts {
		text := p.Text()
		allTexts = append(allTexts, text)
		if p.Label == string(predict.Low) {
			lowTexts = append(lowTexts, text)
		}
	}

	suggestions := replacement.Suggest(kp.Vocab, lowTexts, allTexts, replacement.Defaults())
	if suggestions == nil {
		suggestions = []replacement.Suggestion{}
	}
	c.JSON(http.StatusOK, ReplacementsResponse{Kind: kind, Suggestions: suggestions})
}

func loadVectors(ctx context.Context, db *corpus.DB, schema *feature.Schema, kind string) ([]feature.Vector, error) {
	posts, err := db.LoadPosts(ctx, kind, false)
	if err != nil {
		return nil, err
	}
	var out []feature.Vector
	for _, p := range posts {
		if len(p.Features) == 0 {
			continue
		}
		v, err := feature.NewVector(schema, p.Features)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", p.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func splitWordsParam(raw string) []string {
	var out []string
	for _, w := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(w); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
