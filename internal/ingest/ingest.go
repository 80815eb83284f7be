// Package ingest converts a registrar course export into the processed
// catalog JSON the server loads at startup. Descriptions missing from the
// export can be filled in by scraping the public bulletin pages.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/catalog"
	"github.com/bu-planner/backend/pkg/logger"
)

// Converter turns registrar CSV rows into catalog courses.
type Converter struct {
	scraper *BulletinScraper
}

func NewConverter(scraper *BulletinScraper) *Converter {
	return &Converter{scraper: scraper}
}

// Convert reads the registrar export and returns the processed courses.
// Rows missing a code or title are skipped with a warning rather than
// aborting the whole run.
func (cv *Converter) Convert(r io.Reader) ([]catalog.Course, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"code", "title"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var courses []catalog.Course
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("Skipping malformed row", zap.Int("line", line), zap.Error(err))
			continue
		}

		code := field(row, "code")
		title := field(row, "title")
		if code == "" || title == "" {
			logger.Warn("Skipping row without code or title", zap.Int("line", line))
			continue
		}

		course := catalog.Course{
			ID:              strings.ToLower(strings.ReplaceAll(code, " ", "-")),
			Code:            code,
			Title:           title,
			ShortTitle:      field(row, "short_title"),
			Subject:         field(row, "subject"),
			CatalogNumber:   field(row, "catalog_number"),
			Department:      field(row, "department"),
			AcademicGroup:   field(row, "academic_group"),
			AcademicOrg:     field(row, "academic_org"),
			Level:           field(row, "level"),
			Description:     field(row, "description"),
			Component:       field(row, "component"),
			HubRequirements: splitList(field(row, "hub_requirements")),
			Skills:          splitList(field(row, "skills")),
		}
		course.Prerequisites.Required = splitList(field(row, "prerequisites"))
		course.Prerequisites.Recommended = splitList(field(row, "recommended"))

		if credits := field(row, "credits"); credits != "" {
			if n, err := strconv.ParseFloat(credits, 64); err == nil {
				course.Credits = n
			}
		}
		if rep := field(row, "repeatable"); rep != "" {
			course.Repeatable = strings.EqualFold(rep, "y") || strings.EqualFold(rep, "yes") || rep == "1"
		}
		if consent := field(row, "consent_required"); consent != "" {
			course.ConsentRequired = strings.EqualFold(consent, "y") || strings.EqualFold(consent, "yes") || consent == "1"
		}

		if course.Description == "" && cv.scraper != nil {
			desc, err := cv.scraper.Description(course.Code)
			if err != nil {
				logger.Warn("Bulletin scrape failed",
					zap.String("code", course.Code),
					zap.Error(err))
			} else {
				course.Description = desc
			}
		}

		courses = append(courses, course)
	}

	return courses, nil
}

// WriteJSON writes the processed catalog in the shape catalog.Load expects.
func WriteJSON(path string, courses []catalog.Course) error {
	payload := struct {
		Count   int              `json:"count"`
		Courses []catalog.Course `json:"courses"`
	}{
		Count:   len(courses),
		Courses: courses,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// BulletinScraper fetches course descriptions from the public bulletin.
// Course codes like "CAS CS 111" map to pages like
// <base>/cas-cs-111/.
type BulletinScraper struct {
	baseURL    string
	httpClient *http.Client
}

func NewBulletinScraper(baseURL string, timeout time.Duration) *BulletinScraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BulletinScraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (b *BulletinScraper) Description(code string) (string, error) {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), " ", "-"))
	pageURL := fmt.Sprintf("%s/%s/", b.baseURL, slug)

	resp, err := b.httpClient.Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch bulletin page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bulletin page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse bulletin page: %w", err)
	}

	return ExtractDescription(doc)
}

// ExtractDescription pulls the description paragraph out of a parsed
// bulletin page. Bulletin pages wrap the description in #course-content;
// older pages use a bare paragraph after the heading.
func ExtractDescription(doc *goquery.Document) (string, error) {
	doc.Find("script, style, nav, footer, header").Remove()

	text := strings.TrimSpace(doc.Find("#course-content p").First().Text())
	if text == "" {
		text = strings.TrimSpace(doc.Find("div.course-description").First().Text())
	}
	if text == "" {
		doc.Find("h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			next := strings.TrimSpace(s.NextFiltered("p").Text())
			if next != "" {
				text = next
				return false
			}
			return true
		})
	}

	if text == "" {
		return "", fmt.Errorf("no description found")
	}
	return text, nil
}
