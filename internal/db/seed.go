package db

import (
	"fmt"

	"cityguide/internal/logging"
	"cityguide/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// postNamespace derives stable seed post ids from their titles.
var postNamespace = uuid.MustParse("6f1c3a52-4a8e-4f5e-9a1d-2b7c0e9d8a10")

// SeedPostID returns the id SeedPosts assigns to a seed post title.
func SeedPostID(title string) string {
	return uuid.NewSHA1(postNamespace, []byte(title)).String()
}

var seedPosts = []models.Post{
	{Type: models.PostTypeEvent, Title: "Malang Jazz Festival 2025", Venue: "Lembah Dieng", Location: "Lembah Dieng, Malang",
		Tags: []string{"Music", "Festival", "Jazz"}, Verified: true,
		Content: "Get ready for the biggest jazz event in East Java! Join us for a night of soulful melodies and unforgettable performances."},
	{Type: models.PostTypeFood, Title: "Bakso President - Legendary Meatball Soup", Venue: "Bakso President", Location: "Jl. Batanghari, Malang",
		Tags: []string{"Culinary", "Legendary", "StreetFood"}, Verified: true,
		Content: "Serving authentic Bakso Malang since 1975, right by the train tracks. Open daily 10AM - 9PM."},
	{Type: models.PostTypePlace, Title: "Kampung Warna Warni Jodipan", Venue: "Jodipan Village", Location: "Jodipan, Malang",
		Tags: []string{"Tourism", "Photography", "HiddenGem"}, Verified: true,
		Content: "A riverside village painted in every colour, with a glass bridge across the Brantas."},
	{Type: models.PostTypeEvent, Title: "Malang Flower Carnival 2025", Venue: "Ijen Boulevard", Location: "Ijen Boulevard, Malang",
		Tags: []string{"Culture", "Carnival", "Art"}, Verified: true,
		Content: "Costumes made of flowers parade down Ijen Boulevard."},
	{Type: models.PostTypeFood, Title: "Toko Oen - Heritage Ice Cream Since 1930", Venue: "Toko Oen", Location: "Jl. Basuki Rahmat, Malang",
		Tags: []string{"Heritage", "Dessert", "Vintage"}, Verified: true,
		Content: "Colonial-era ice cream parlour still serving its original recipes."},
	{Type: models.PostTypePlace, Title: "Coban Rondo Waterfall", Venue: "Coban Rondo", Location: "Pandesari, Pujon, Malang",
		Tags: []string{"Nature", "Waterfall", "Adventure"}, Verified: true,
		Content: "An 84 metre waterfall on the slopes of Mount Kawi, with a maze garden nearby."},
	{Type: models.PostTypeEvent, Title: "Malang Night Paradise", Venue: "Hawai Waterpark", Location: "Jl. Graha Kencana, Malang",
		Tags: []string{"Festival", "Lights", "Family"}, Verified: true,
		Content: "A night park of lantern sculptures and light installations."},
	{Type: models.PostTypeFood, Title: "Depot Rawon Nguling", Venue: "Rawon Nguling", Location: "Jl. Panglima Sudirman, Malang",
		Tags: []string{"Culinary", "Traditional", "Authentic"}, Verified: true,
		Content: "Black beef soup the way Malang has eaten it for decades."},
}

// SeedPosts inserts the sample listings when the posts table is empty.
func SeedPosts(gdb *gorm.DB) error {
	log := logging.Component("db")

	var count int64
	if err := gdb.Model(&models.Post{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting posts: %w", err)
	}
	if count > 0 {
		log.Debug().Int64("posts", count).Msg("posts already seeded, skipping")
		return nil
	}

	for _, p := range seedPosts {
		post := p
		post.ID = SeedPostID(post.Title)
		if err := gdb.Create(&post).Error; err != nil {
			return fmt.Errorf("seeding post %q: %w", post.Title, err)
		}
	}
	log.Info().Int("posts", len(seedPosts)).Msg("initial posts created")
	return nil
}
