package ingest

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/patcharlton/chamonix-ski-status/internal/metrics"
	"github.com/patcharlton/chamonix-ski-status/internal/store"
)

const (
	defaultBulletinHost = "ftp.meteo.fr:21"
	defaultBulletinFile = "/FDPMSP/BRA/BRA.MONT-BLANC.xml"
)

// DefaultMassif is the massif covering the Chamonix valley; readers use it to
// look up the stored bulletin.
const DefaultMassif = "MONT-BLANC"

// BulletinClient fetches the daily avalanche bulletin (BRA) for a massif over
// FTP. The bulletin backfills the avalanche risk when the resort scrape does
// not carry one.
type BulletinClient struct {
	host   string
	file   string
	massif string
}

func NewBulletinClient(host, file, massif string) *BulletinClient {
	if host == "" {
		host = defaultBulletinHost
	}
	if file == "" {
		file = defaultBulletinFile
	}
	if massif == "" {
		massif = DefaultMassif
	}
	return &BulletinClient{host: host, file: file, massif: massif}
}

type braBulletin struct {
	XMLName   xml.Name  `xml:"BULLETINS_NEIGE_AVALANCHE"`
	Massif    string    `xml:"MASSIF,attr"`
	ValidDate string    `xml:"DATEVALIDITE,attr"`
	Risque    braRisque `xml:"CARTOUCHERISQUE>RISQUE"`
	Resume    string    `xml:"RESUME"`
}

type braRisque struct {
	Maxi      int    `xml:"RISQUEMAXI,attr"`
	Evolution string `xml:"EVOLURISQUE1,attr"`
}

// Fetch retrieves and parses today's bulletin.
func (b *BulletinClient) Fetch() (*store.AvalancheBulletin, error) {
	conn, err := ftp.Dial(b.host, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		metrics.BulletinFetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		metrics.BulletinFetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(b.file)
	if err != nil {
		metrics.BulletinFetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		metrics.BulletinFetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read body: %w", err)
	}

	bulletin, err := parseBulletin(body, b.massif)
	if err != nil {
		metrics.BulletinFetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.BulletinFetchesTotal.WithLabelValues("success").Inc()
	return bulletin, nil
}

func parseBulletin(body []byte, massif string) (*store.AvalancheBulletin, error) {
	var doc braBulletin
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal bulletin xml: %w", err)
	}

	if doc.Massif != "" && !strings.EqualFold(doc.Massif, massif) {
		return nil, fmt.Errorf("bulletin is for massif %s, want %s", doc.Massif, massif)
	}
	if doc.Risque.Maxi < 1 || doc.Risque.Maxi > 5 {
		return nil, fmt.Errorf("bulletin risk %d outside 1-5 scale", doc.Risque.Maxi)
	}

	validDate, err := time.Parse("2006-01-02", doc.ValidDate)
	if err != nil {
		return nil, fmt.Errorf("parse bulletin date %q: %w", doc.ValidDate, err)
	}

	bulletin := &store.AvalancheBulletin{
		Massif:    massif,
		ValidDate: validDate,
		RiskLevel: doc.Risque.Maxi,
		FetchedAt: time.Now().UTC(),
	}
	if doc.Risque.Evolution != "" {
		bulletin.RiskEvolution.String = doc.Risque.Evolution
		bulletin.RiskEvolution.Valid = true
	}
	if summary := strings.TrimSpace(doc.Resume); summary != "" {
		bulletin.Summary.String = summary
		bulletin.Summary.Valid = true
	}
	return bulletin, nil
}
