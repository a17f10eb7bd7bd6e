package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// ErrEmptyRoster is returned when the roster file has no data rows.
var ErrEmptyRoster = errors.New("roster file has no data rows")

var (
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)
	shortDateRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2}$`)
)

// NormalizeDate converts the date formats seen in roster files to YYYY-MM-DD.
// Two-digit years 00-29 are assumed to be 20xx. Unparseable input is returned
// unchanged so a bad cell never drops a player row.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var t time.Time
	var err error
	switch {
	case isoDateRe.MatchString(s):
		t, err = time.Parse("2006-1-2", s)
	case shortDateRe.MatchString(s):
		parts := strings.Split(s, "/")
		year := parts[2]
		if year < "30" {
			year = "20" + year
		} else {
			year = "19" + year
		}
		t, err = time.Parse("2006-1-2", fmt.Sprintf("%s-%s-%s", year, parts[0], parts[1]))
	default:
		t, err = time.Parse("1/2/2006", s)
	}
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

// canonicalHeader maps the header spellings that show up in roster exports to
// one canonical name.
func canonicalHeader(h string) string {
	switch strings.TrimSpace(h) {
	case "First Name", "FirstName":
		return "FirstName"
	case "Last Name", "LastName":
		return "LastName"
	case "Date of Birth", "DOB":
		return "DOB"
	case "Jersey", "Jersey #":
		return "Jersey"
	default:
		return strings.TrimSpace(h)
	}
}

// Parse reads a tab-delimited roster file with a header row and returns the
// players with stable and legacy IDs assigned. Row order determines the
// legacy IDs, so re-importing a reordered file changes legacy IDs but never
// the stable ones.
func Parse(r io.Reader) ([]*Player, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1 // roster exports are ragged at the tail
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyRoster
		}
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	for i, h := range header {
		header[i] = canonicalHeader(h)
	}

	now := time.Now().UTC()
	var players []*Player
	for i := 0; ; i++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster row %d: %w", i+1, err)
		}

		fields := map[string]string{}
		for j, h := range header {
			if j < len(record) {
				fields[h] = strings.TrimSpace(record[j])
			}
		}
		if fields["FirstName"] == "" && fields["LastName"] == "" {
			continue
		}

		p := &Player{
			FirstName:  fields["FirstName"],
			LastName:   fields["LastName"],
			DOB:        NormalizeDate(fields["DOB"]),
			School:     fields["School"],
			Position:   fields["Position"],
			Jersey:     fields["Jersey"],
			ImportedAt: now,
		}
		p.ID = ResolveID(p.FirstName, p.LastName, p.DOB)
		p.LegacyID = LegacyID(len(players))
		players = append(players, p)
	}

	if len(players) == 0 {
		return nil, ErrEmptyRoster
	}
	return players, nil
}
