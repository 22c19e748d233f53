package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/SurinderTech/findify-finder/store"
)

// submitterMatchMessage is the aggregate notification for the owner of the
// item that triggered the run.
func submitterMatchMessage(item *store.Item, matchCount int) (title, body string) {
	plural := ""
	if matchCount > 1 {
		plural = "es"
	}
	title = fmt.Sprintf("Potential match%s found!", plural)
	body = fmt.Sprintf("We found %d potential match%s for your %s item %q.",
		matchCount, plural, item.Status, item.Title)
	return title, body
}

// ownerMatchMessage is the per-match notification for a candidate's owner.
func ownerMatchMessage(owned, other *store.Item) (title, body string) {
	title = "Item match found!"
	var b strings.Builder
	fmt.Fprintf(&b, "Your %s item %q may match someone's %s item %q.",
		owned.Status, owned.Title, other.Status, other.Title)
	reportedOn := ""
	if other.DateReported > 0 {
		reportedOn = time.Unix(other.DateReported, 0).UTC().Format("2006-01-02")
	}
	if other.Location != "" {
		fmt.Fprintf(&b, " It was reported at %s", other.Location)
		if reportedOn != "" {
			fmt.Fprintf(&b, " on %s", reportedOn)
		}
		b.WriteString(".")
	} else if reportedOn != "" {
		fmt.Fprintf(&b, " It was reported on %s.", reportedOn)
	}
	return title, b.String()
}

func confirmationMessageForLoser(lostItem, foundItem *store.Item) (title, body string) {
	title = "Match confirmed!"
	body = fmt.Sprintf("Your lost item %q has been matched with a found item %q. Please arrange to collect it.",
		lostItem.Title, foundItem.Title)
	return title, body
}

func confirmationMessageForFinder(foundItem, lostItem *store.Item) (title, body string) {
	title = "Match confirmed!"
	body = fmt.Sprintf("The item %q you found has been returned to the owner of %q. Thank you for helping!",
		foundItem.Title, lostItem.Title)
	return title, body
}
