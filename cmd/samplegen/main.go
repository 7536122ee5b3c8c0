// Command samplegen writes a realistic sample ticket CSV for demoing and
// exercising the ingestion pipeline. Output columns match the upload
// contract: created_at and text plus the recommended optional columns.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"time"
)

var categories = map[string][]string{
	"Billing": {
		"charged twice for subscription",
		"payment method declined",
		"unexpected charge on credit card",
		"refund not received",
		"invoice incorrect amount",
		"subscription auto-renewed unwanted",
		"promo code not applied",
		"tax calculation wrong",
	},
	"Technical": {
		"app crashes on startup",
		"cannot login to account",
		"features not loading properly",
		"slow performance issues",
		"error message when saving",
		"mobile app not syncing",
		"integration not working",
		"API returning errors",
	},
	"Delivery": {
		"package not delivered on time",
		"wrong item received",
		"damaged product arrived",
		"tracking number not working",
		"delivery to wrong address",
		"missing items from order",
		"package marked delivered but not received",
	},
	"Account": {
		"cannot reset password",
		"account locked after failed login",
		"email not receiving notifications",
		"profile information not updating",
		"two-factor authentication issues",
		"cannot delete account",
		"want to change email address",
	},
	"Product": {
		"product defective out of box",
		"missing parts in package",
		"product not as described",
		"quality issues with material",
		"instructions unclear or missing",
		"warranty claim process",
		"replacement part needed",
	},
	"Refund": {
		"want to return product",
		"refund taking too long",
		"partial refund received",
		"return label not working",
		"refund to wrong payment method",
		"restocking fee too high",
	},
}

var (
	channels   = []string{"Email", "Chat", "Phone", "Web Form"}
	priorities = []string{"Low", "Medium", "High", "Critical"}
	tiers      = []string{"Free", "Basic", "Premium", "Enterprise"}
	products   = []string{"Product A", "Product B", "Product C", "Product D", "Service X", "Service Y"}

	openings = []string{
		"Hi, I need help with",
		"Hello, I'm having an issue with",
		"I'm experiencing a problem with",
		"Can someone help me with",
		"I need assistance with",
		"There's an issue with",
		"I'm writing because",
	}
	contexts = []string{
		"This has been happening for the past few days.",
		"I've tried multiple times but no luck.",
		"This is affecting my work.",
		"I need this resolved soon.",
		"Can you please look into this?",
		"I've already contacted support before about this.",
		"This is the second time this has happened.",
	}
	urgentWords     = []string{"urgent", "critical", "immediately", "asap", "emergency", "broken", "not working"}
	frustratedWords = []string{"frustrated", "angry", "disappointed", "unacceptable", "terrible", "awful"}
)

func main() {
	out := flag.String("out", "tickets_sample.csv", "output CSV path")
	rows := flag.Int("rows", 500, "number of tickets to generate")
	seed := flag.Int64("seed", 42, "random seed for reproducibility")
	days := flag.Int("days", 180, "spread created_at over this many past days")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	f, err := os.Create(*out)
	if err != nil {
		slog.Error("failed to create output file", "path", *out, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"ticket_id", "customer_id", "created_at", "text",
		"category", "channel", "priority", "customer_tier", "product",
	}
	if err := w.Write(header); err != nil {
		slog.Error("failed to write header", "error", err)
		os.Exit(1)
	}

	categoryNames := make([]string, 0, len(categories))
	for name := range categories {
		categoryNames = append(categoryNames, name)
	}
	// Map iteration order is random; sort so a fixed seed gives fixed output.
	sort.Strings(categoryNames)

	end := time.Now()
	window := time.Duration(*days) * 24 * time.Hour

	for i := 0; i < *rows; i++ {
		createdAt := end.Add(-time.Duration(rng.Int63n(int64(window))))
		category := categoryNames[rng.Intn(len(categoryNames))]
		issues := categories[category]
		issue := issues[rng.Intn(len(issues))]

		record := []string{
			fmt.Sprintf("TKT-%d", 100000+i),
			fmt.Sprintf("CUST-%d", 1000+rng.Intn(9000)),
			createdAt.Format("2006-01-02 15:04:05"),
			ticketText(rng, issue),
			category,
			channels[rng.Intn(len(channels))],
			priorities[rng.Intn(len(priorities))],
			tiers[rng.Intn(len(tiers))],
			products[rng.Intn(len(products))],
		}
		if err := w.Write(record); err != nil {
			slog.Error("failed to write row", "row", i, "error", err)
			os.Exit(1)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		slog.Error("failed to flush output", "error", err)
		os.Exit(1)
	}

	slog.Info("sample data written", "path", *out, "rows", *rows)
}

// ticketText assembles a plausible support message: opening phrase, the
// issue, a context sentence, and a 30% chance of an urgency or frustration
// tail.
func ticketText(rng *rand.Rand, issue string) string {
	opening := openings[rng.Intn(len(openings))]
	context := contexts[rng.Intn(len(contexts))]

	emotion := ""
	if rng.Float64() < 0.3 {
		if rng.Float64() < 0.5 {
			emotion = fmt.Sprintf(" This is %s!", urgentWords[rng.Intn(len(urgentWords))])
		} else {
			emotion = fmt.Sprintf(" I'm really %s about this.", frustratedWords[rng.Intn(len(frustratedWords))])
		}
	}

	return fmt.Sprintf("%s %s. %s%s", opening, issue, context, emotion)
}
