package factories

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/scooplog/scooplog/internal/models"
	"github.com/scooplog/scooplog/internal/rarity"
)

var fake = faker.New()

type FlavorFactory struct{}

// CreateFlavor fabricates a catalog record with a plausible appearance
// history somewhere between startDate and now, for demo and load-testing
// databases.
func (ff *FlavorFactory) CreateFlavor(startDate, now time.Time) models.FlavorRecord {
	first := randomDateBetween(startDate, now)
	last := randomDateBetween(first, now)
	appearances := rand.Intn(200) + 1

	record := models.FlavorRecord{
		ID:                 cuid.New(),
		Name:               generateFlavorName(),
		Description:        fake.Lorem().Sentence(8),
		Category:           generateCategory(),
		Tags:               generateTags(),
		Vegan:              rand.Float64() < 0.2,
		GlutenFree:         rand.Float64() < 0.6,
		FirstAppeared:      first,
		LastAppeared:       &last,
		TotalAppearances:   appearances,
		TotalDaysAvailable: appearances,
	}

	if score, err := rarity.Score(&record, now); err == nil {
		record.RarityScore = score
	} else {
		record.RarityScore = rarity.UnclassifiedScore
	}
	return record
}

// CreateFlavors fabricates count records with distinct names. The curated
// name pool is finite, so once collisions dominate a numeric suffix keeps
// the batch growing instead of spinning forever.
func (ff *FlavorFactory) CreateFlavors(count int, startDate, now time.Time) []*models.FlavorRecord {
	seen := make(map[string]bool, count)
	flavors := make([]*models.FlavorRecord, 0, count)
	collisions := 0
	for len(flavors) < count {
		flavor := ff.CreateFlavor(startDate, now)
		if seen[flavor.Name] {
			collisions++
			if collisions <= 3*count {
				continue
			}
			flavor.Name = fmt.Sprintf("%s No. %d", flavor.Name, len(flavors)+1)
			if seen[flavor.Name] {
				continue
			}
		}
		seen[flavor.Name] = true
		flavors = append(flavors, &flavor)
	}
	return flavors
}

func randomDateBetween(from, to time.Time) time.Time {
	from, to = models.ToDate(from), models.ToDate(to)
	days := models.DaysBetween(from, to)
	if days <= 0 {
		return from
	}
	return from.AddDate(0, 0, rand.Intn(days+1))
}

func generateFlavorName() string {
	bases := []string{
		"Vanilla Bean", "Dark Chocolate", "Strawberry", "Pistachio", "Black Sesame",
		"Matcha", "Salted Caramel", "Ube", "Mango", "Coconut", "Espresso",
		"Honey Lavender", "Brown Butter", "Roasted Banana", "Thai Tea", "Horchata",
	}
	twists := []string{
		"", "", "", " Swirl", " Crunch", " Fudge", " Ripple", " Brittle",
		" Sticky Rice", " Cheesecake", " Cookie Dough",
	}
	return bases[rand.Intn(len(bases))] + twists[rand.Intn(len(twists))]
}

func generateCategory() string {
	categories := []string{"classic", "seasonal", "sorbet", "dairy-free", "collaboration"}
	return categories[rand.Intn(len(categories))]
}

func generateTags() []string {
	allTags := []string{"nutty", "fruity", "chocolatey", "floral", "spiced", "boozy", "tart", "creamy"}
	count := rand.Intn(3) + 1
	tags := make([]string, count)
	for i := 0; i < count; i++ {
		tags[i] = allTags[rand.Intn(len(allTags))]
	}
	return tags
}
