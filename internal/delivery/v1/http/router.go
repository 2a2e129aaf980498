package http

import (
	"net/http"
	"path/filepath"

	_ "github.com/MametaroGG/BoothPic/docs" // Импорт сгенерированных файлов
	"github.com/MametaroGG/BoothPic/internal/domain"
	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/logger"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(searchUC usecase.SearchUC, optOutUC usecase.OptOutUC, progress *domain.Progress, imageRoot string) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	statusHandler := NewStatusHandler(progress)

	// Корень отдаёт статус: так фронтенд и мониторинг проверяют живость сервиса.
	r.router.Get("/", statusHandler.status)

	// Локальные превью, на которые ссылается thumbnailUrl в payload.
	imagesDir := filepath.Join(imageRoot, "raw_images")
	r.router.Handle("/api/images/*",
		http.StripPrefix("/api/images/", http.FileServer(http.Dir(imagesDir))))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		searchHandler := NewSearchHandler(searchUC, r.logger)
		optOutHandler := NewOptOutHandler(optOutUC, r.logger)

		v1.Post("/search", searchHandler.search)
		v1.Get("/status", statusHandler.status)
		v1.Post("/opt-out", optOutHandler.optOut)
	})
}
