/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gridboard/internal/domain"
)

// Sample data for the built-in catalog: a single summer festival.
type festival struct {
	Name         string
	TotalTickets int
	SoldTickets  int
	CheckedIn    int
	Revenue      int
	VIP          int
}

var summerFest = festival{
	Name:         "Summer Music Festival 2024",
	TotalTickets: 50000,
	SoldTickets:  47500,
	CheckedIn:    42300,
	Revenue:      2375000,
	VIP:          1250,
}

type daySales struct {
	Date    string
	Sales   int
	Revenue int
}

var ticketSales = []daySales{
	{"2024-07-24", 1850, 92500},
	{"2024-07-25", 2300, 115000},
	{"2024-07-26", 2800, 140000},
	{"2024-07-27", 3200, 160000},
	{"2024-07-28", 2900, 145000},
	{"2024-07-29", 3500, 175000},
	{"2024-07-30", 4200, 210000},
}

type cityTickets struct {
	City    string
	Country string
	Tickets int
}

var markets = []cityTickets{
	{"Los Angeles", "USA", 12500},
	{"New York", "USA", 8900},
	{"San Francisco", "USA", 6700},
	{"Austin", "USA", 5400},
	{"Toronto", "Canada", 3200},
	{"London", "UK", 2800},
	{"Berlin", "Germany", 2100},
	{"Sydney", "Australia", 1900},
}

type vendor struct {
	Name     string
	Category string
	Sales    int
	Rating   float64
}

var vendors = []vendor{
	{"Gourmet Burgers Co.", "Food", 45000, 4.8},
	{"Craft Beer Station", "Beverages", 38000, 4.6},
	{"Eco-Friendly Merch", "Merchandise", 32000, 4.9},
	{"Street Tacos Plus", "Food", 29000, 4.7},
	{"Festival Fashion", "Merchandise", 25000, 4.4},
	{"Fresh Juice Bar", "Beverages", 22000, 4.5},
}

var sentimentScores = []float64{0.8, 0.9, 0.5, 0.7, 0.3, 0.8}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Builtin returns the event-analytics card set used when no catalog file is
// configured. The first four cards make up the introductory view.
func Builtin() []domain.Card {
	f := summerFest
	return []domain.Card{
		{
			ID: "ticket-sales", Title: "Ticket Sales Trend", MinW: 3, MinH: 2, DefaultSize: domain.Size{W: 6, H: 4},
			Content: domain.ContentFunc(func(w io.Writer) error {
				for _, d := range ticketSales {
					if _, err := fmt.Fprintf(w, "%s  %5d tickets  $%d\n", d.Date, d.Sales, d.Revenue); err != nil {
						return err
					}
				}
				return nil
			}),
		},
		{
			ID: "revenue-breakdown", Title: "Revenue Breakdown", MinW: 3, MinH: 2, DefaultSize: domain.Size{W: 6, H: 4},
			Content: domain.ContentFunc(func(w io.Writer) error {
				byCat := map[string]int{}
				for _, v := range vendors {
					byCat[v.Category] += v.Sales
				}
				if _, err := fmt.Fprintf(w, "Tickets      $%d\n", f.Revenue); err != nil {
					return err
				}
				cats := make([]string, 0, len(byCat))
				for c := range byCat {
					cats = append(cats, c)
				}
				sort.Strings(cats)
				for _, c := range cats {
					if _, err := fmt.Fprintf(w, "%-12s $%d\n", c, byCat[c]); err != nil {
						return err
					}
				}
				return nil
			}),
		},
		{
			ID: "live-check-ins", Title: "Live Check-ins", MinW: 2, MinH: 2,
			Content: domain.ContentFunc(func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%d of %d ticket holders checked in (%.1f%%)\n",
					f.CheckedIn, f.SoldTickets, percent(f.CheckedIn, f.SoldTickets))
				return err
			}),
		},
		{
			ID: "satisfaction-scores", Title: "Satisfaction Scores by Category", MinW: 2, MinH: 2,
			Content: domain.ContentFunc(func(w io.Writer) error {
				for _, v := range vendors {
					if _, err := fmt.Fprintf(w, "%-20s %.1f\n", v.Name, v.Rating); err != nil {
						return err
					}
				}
				return nil
			}),
		},
		{
			ID: "ticket-conversion", Title: "Ticket Conversion Rate", MinW: 2, MinH: 2, DefaultSize: domain.Size{W: 3, H: 2},
			Content: domain.ContentFunc(func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%.1f%% of %d tickets sold\n", percent(f.SoldTickets, f.TotalTickets), f.TotalTickets)
				return err
			}),
		},
		{
			ID: "vip-attendees", Title: "VIP Attendees", MinW: 2, MinH: 2, DefaultSize: domain.Size{W: 3, H: 2},
			Content: domain.ContentFunc(func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%d VIP guests\n", f.VIP)
				return err
			}),
		},
		{
			ID: "top-markets", Title: "Top Markets", MinW: 3, MinH: 2, DefaultSize: domain.Size{W: 4, H: 4},
			Content: domain.ContentFunc(func(w io.Writer) error {
				for _, m := range markets {
					if _, err := fmt.Fprintf(w, "%-14s %-10s %d\n", m.City, m.Country, m.Tickets); err != nil {
						return err
					}
				}
				return nil
			}),
		},
		{
			ID: "vendor-ranking", Title: "Vendor Performance", MinW: 3, MinH: 2, DefaultSize: domain.Size{W: 4, H: 4},
			Content: domain.ContentFunc(func(w io.Writer) error {
				ranked := append([]vendor(nil), vendors...)
				sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Sales > ranked[j].Sales })
				for i, v := range ranked {
					if _, err := fmt.Fprintf(w, "%d. %s $%d\n", i+1, v.Name, v.Sales); err != nil {
						return err
					}
				}
				return nil
			}),
		},
		{
			ID: "crowd-mood", Title: "Crowd Mood", MinW: 2, MinH: 2,
			Content: domain.ContentFunc(func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "mood %.2f across %d posts\n", crowdMood(sentimentScores), len(sentimentScores))
				return err
			}),
		},
		{
			ID: "real-time-alerts", Title: "Real-time Alerts", MinW: 2, MinH: 2, DefaultSize: domain.Size{W: 4, H: 3},
			Content: Text(strings.Join([]string{
				"Long lines at food vendors",
				"Main stage at 92% capacity",
			}, "\n") + "\n"),
		},
	}
}

func crowdMood(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var total float64
	for _, s := range scores {
		total += s
	}
	return total / float64(len(scores))
}
