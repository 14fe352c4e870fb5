// Package testutil provides test utilities including sample data generation.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
)

// Standard fictional titles and brands for test data.
// NEVER use real movie titles, studio names, or trademarked content.
var (
	// MovieTitles are fictional feature titles.
	MovieTitles = []string{
		"Night Harbor",
		"The Last Semaphore",
		"Glass Orchard",
		"Copper Sky",
		"Midnight Freight",
		"A Quiet Ledger",
		"The Cartographer's Son",
		"Salt and Static",
		"Winter Arcade",
		"The Hollow Reel",
		"Paper Lanterns",
		"Driftwood City",
	}

	// Synopses are generic loglines paired with titles at random.
	Synopses = []string{
		"A reclusive engineer uncovers a conspiracy hidden in an old railway timetable.",
		"Two estranged siblings inherit a failing seaside cinema and a box of unlabeled film reels.",
		"A night-shift radio operator intercepts a signal that should not exist.",
		"An aging cartographer's final map leads his son across a country that has since changed its borders.",
		"A small town's annual festival takes a strange turn when the power grid fails.",
		"A courier carrying an undeliverable letter crosses paths with the person who wrote it.",
	}

	// SponsorNames are fictional sponsor brands.
	SponsorNames = []string{
		"Fizzco Beverages",
		"Northwind Outfitters",
		"Lumen Optics",
		"Harbor & Pine",
		"Atlas Couriers",
		"Glimmer Cosmetics",
	}

	// SubtitleLangs are language tags with display labels.
	SubtitleLangs = map[string]string{
		"en": "English",
		"de": "Deutsch",
		"fr": "Français",
		"es": "Español",
		"pt": "Português",
		"ja": "日本語",
	}

	// SourceLabels are quality labels keyed by rendition type.
	SourceLabels = map[models.SourceType][]string{
		models.SourceTypeHLS:  {"1080p", "720p", "4K HDR"},
		models.SourceTypeDASH: {"1080p", "720p"},
		models.SourceTypeMP4:  {"480p", "360p"},
	}

	// UserAgents are plausible player user-agent strings.
	UserAgents = []string{
		"reelplayer-web/2.4.1",
		"reelplayer-ios/1.9.0",
		"reelplayer-tv/3.0.2",
		"Mozilla/5.0 (X11; Linux x86_64) reelplayer-embed/0.8",
	}
)

// SampleDataGenerator generates realistic but fictional catalog and event
// data for testing.
type SampleDataGenerator struct {
	rng *rand.Rand
}

// NewSampleDataGenerator creates a new sample data generator with a random seed.
func NewSampleDataGenerator() *SampleDataGenerator {
	return &SampleDataGenerator{
		rng: rand.New(rand.NewSource(rand.Int63())),
	}
}

// NewSampleDataGeneratorWithSeed creates a new generator with a fixed seed
// for reproducibility.
func NewSampleDataGeneratorWithSeed(seed int64) *SampleDataGenerator {
	return &SampleDataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// RandomTitle returns a random fictional movie title.
func (g *SampleDataGenerator) RandomTitle() string {
	return MovieTitles[g.rng.Intn(len(MovieTitles))]
}

// RandomUserAgent returns a random player user agent.
func (g *SampleDataGenerator) RandomUserAgent() string {
	return UserAgents[g.rng.Intn(len(UserAgents))]
}

// Slugify converts a title into a URL-friendly slug.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = strings.ReplaceAll(slug, "'", "")
	slug = strings.ReplaceAll(slug, "&", "and")
	fields := strings.FieldsFunc(slug, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	return strings.Join(fields, "-")
}

// GenerateMovie produces a published movie with an HLS source and an
// English subtitle track. The slug carries an index suffix so batches
// never collide on the unique constraint.
func (g *SampleDataGenerator) GenerateMovie(index int) *models.Movie {
	title := g.RandomTitle()
	slug := fmt.Sprintf("%s-%d", Slugify(title), index)

	movie := &models.Movie{
		Title:           title,
		Slug:            slug,
		Synopsis:        Synopses[g.rng.Intn(len(Synopses))],
		Year:            1990 + g.rng.Intn(36),
		DurationSeconds: 4200 + g.rng.Intn(4800),
		Status:          models.MovieStatusPublished,
		PosterKey:       fmt.Sprintf("posters/%s.jpg", slug),
	}
	movie.Sources = append(movie.Sources, models.MovieSource{
		Type:       models.SourceTypeHLS,
		Label:      SourceLabels[models.SourceTypeHLS][g.rng.Intn(len(SourceLabels[models.SourceTypeHLS]))],
		StorageKey: fmt.Sprintf("movies/%s/master.m3u8", slug),
		Priority:   10,
	})
	movie.Subtitles = append(movie.Subtitles, models.SubtitleTrack{
		Lang:       "en",
		Label:      SubtitleLangs["en"],
		StorageKey: fmt.Sprintf("movies/%s/subs/en.vtt", slug),
	})
	return movie
}

// GenerateMovies produces count movies with unique slugs.
func (g *SampleDataGenerator) GenerateMovies(count int) []*models.Movie {
	movies := make([]*models.Movie, 0, count)
	for i := 0; i < count; i++ {
		movies = append(movies, g.GenerateMovie(i))
	}
	return movies
}

// GenerateSponsor produces an enabled sponsor with one corner placement.
func (g *SampleDataGenerator) GenerateSponsor() *models.Sponsor {
	name := SponsorNames[g.rng.Intn(len(SponsorNames))]
	sponsor := &models.Sponsor{
		Name:         name,
		ContactEmail: fmt.Sprintf("media@%s.example.com", Slugify(name)),
	}
	sponsor.Placements = append(sponsor.Placements, models.SponsorPlacement{
		Type:         models.OverlayTypeImage,
		Corner:       models.OverlayCornerBottomRight,
		StartSeconds: 10,
		EndSeconds:   40,
		URL:          fmt.Sprintf("https://cdn.example.com/creatives/%s.png", Slugify(name)),
		Opacity:      0.8,
	})
	return sponsor
}

// GenerateSession produces the event sequence of one complete playback
// session: a start, heartbeats at the given interval, and an end. Server
// timestamps begin at start and advance by interval per heartbeat.
func (g *SampleDataGenerator) GenerateSession(sessionID string, movieID models.ULID, start time.Time, heartbeats int, interval time.Duration) []*models.TrackEvent {
	agent := g.RandomUserAgent()
	mk := func(typ models.EventType, ts time.Time) *models.TrackEvent {
		return &models.TrackEvent{
			Type:      typ,
			SessionID: sessionID,
			MovieID:   movieID.String(),
			ServerTS:  ts,
			IP:        fmt.Sprintf("203.0.113.%d", 1+g.rng.Intn(254)),
			UserAgent: agent,
		}
	}

	events := make([]*models.TrackEvent, 0, heartbeats+2)
	events = append(events, mk(models.EventPlayStart, start))
	ts := start
	for i := 0; i < heartbeats; i++ {
		ts = ts.Add(interval)
		events = append(events, mk(models.EventPlayHeartbeat, ts))
	}
	events = append(events, mk(models.EventPlayEnd, ts.Add(interval/2)))
	return events
}
