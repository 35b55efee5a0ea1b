package api

import (
	"log"
	"net/http"
	"time"

	"github.com/patcharlton/chamonix-ski-status/internal/conditions"
	"github.com/patcharlton/chamonix-ski-status/internal/ogimage"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data, err := s.getDashboardData()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("api: render index: %v", err)
	}
}

// handleOGImage serves the share banner. Rendered from the latest snapshot and
// cached briefly; crawlers hammer this URL.
func (s *Server) handleOGImage(w http.ResponseWriter, r *http.Request) {
	if png, ok := s.banner.Get(); ok {
		serveBanner(w, png)
		return
	}

	banner := ogimage.BannerData{}
	snap, err := s.latestSnapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snap != nil {
		now := time.Now()
		banner.LiftsOpen = snap.Data.CalculatedSummary.LiftsOpen
		banner.LiftsTotal = snap.Data.CalculatedSummary.LiftsTotal
		banner.Condition = conditions.OverallCondition(snap.Data.Weather, now)
		if rec := conditions.Recommend(snap.Data, s.resolver); rec.Pick != nil {
			banner.TopPick = rec.Pick.Name
		}
	}

	png, err := ogimage.Generate(banner)
	if err != nil {
		log.Printf("api: render banner: %v", err)
		http.Error(w, "banner rendering failed", http.StatusInternalServerError)
		return
	}

	s.banner.Set(png)
	serveBanner(w, png)
}

func serveBanner(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
