// Command seed writes a fake tab-delimited tryout roster, handy for local
// development and demos.
//
//	go run ./cmd/seed -n 40 -out testdata/roster.tsv
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	out   = flag.String("out", env("ROSTER_FILE", "roster.tsv"), "Output roster file")
	count = flag.Int("n", envInt("COUNT", 40), "How many players to generate")
	seed  = flag.Int64("seed", 0, "Random seed (0 = time-based)")
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscan(v, &i); err == nil && i > 0 {
			return i
		}
	}
	return def
}

var positions = []string{"QB", "RB", "WR", "TE", "OL", "DL", "LB", "CB", "S", "K"}

var schools = []string{
	"Lincoln Middle School",
	"Roosevelt Middle School",
	"Jefferson Academy",
	"Washington Prep",
	"Kennedy Middle School",
}

func main() {
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(*seed)
		rand.Seed(*seed)
	} else {
		gofakeit.Seed(time.Now().UnixNano())
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	w := bufio.NewWriter(f)

	row(w, "First Name", "Last Name", "DOB", "School", "Position", "Jersey #")

	for i := 0; i < *count; i++ {
		dob := gofakeit.DateRange(
			time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC),
		)

		// A player can try out for more than one position.
		pos := positions[rand.Intn(len(positions))]
		if rand.Intn(4) == 0 {
			second := positions[rand.Intn(len(positions))]
			if second != pos {
				pos = pos + ", " + second
			}
		}

		// Roughly half the roster already has a jersey assigned, mirroring
		// a mid-season re-import.
		jersey := ""
		if rand.Intn(2) == 0 {
			jersey = fmt.Sprintf("%d", rand.Intn(98)+1)
		}

		// Mix the date formats real exports contain.
		dobStr := dob.Format("1/2/06")
		if rand.Intn(3) == 0 {
			dobStr = dob.Format("2006-01-02")
		}

		row(w,
			gofakeit.FirstName(),
			gofakeit.LastName(),
			dobStr,
			schools[rand.Intn(len(schools))],
			pos,
			jersey,
		)
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d players to %s\n", *count, *out)
}

func row(w *bufio.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}
