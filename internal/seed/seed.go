// Package seed populates a development database with a small
// deterministic data set.
package seed

import (
	"log/slog"

	"trainhub/internal/middleware"
	"trainhub/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Run inserts demo data if the database is empty. Safe to call on every
// startup; it is a no-op once users exist.
func Run(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("TrainHub-Dev-Pass1!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:  "admin",
		Email:     "admin@trainhub.local",
		Password:  string(hash),
		FirstName: "Site",
		LastName:  "Admin",
		IsStaff:   true,
		IsActive:  true,
	}
	coach := &models.User{
		Username:  "coach_dana",
		Email:     "dana@trainhub.local",
		Password:  string(hash),
		FirstName: "Dana",
		LastName:  "Reyes",
		IsActive:  true,
	}
	pending := &models.User{
		Username:  "newcomer",
		Email:     "newcomer@trainhub.local",
		Password:  string(hash),
		FirstName: "Sam",
		LastName:  "Okafor",
	}
	for _, u := range []*models.User{admin, coach, pending} {
		if err := db.Create(u).Error; err != nil {
			return err
		}
	}

	strength := &models.Section{Name: "Strength", Description: "Progressive overload programs"}
	cutting := &models.Section{Name: "Cutting", Description: "Calorie deficit meal plans"}
	for _, s := range []*models.Section{strength, cutting} {
		if err := db.Create(s).Error; err != nil {
			return err
		}
	}

	calories := 1850
	posts := []*models.Post{
		{
			SectionID:   &strength.ID,
			UserID:      coach.ID,
			Title:       "5x5 beginner block",
			Type:        models.PostTypeWorkout,
			Description: "Three sessions a week alternating squat, bench, and deadlift work.",
			IsPublic:    true,
			IsApproved:  true,
		},
		{
			SectionID:       &cutting.ID,
			UserID:          coach.ID,
			Title:           "High-protein deficit week",
			Type:            models.PostTypeMeal,
			Description:     "Seven days of meals around 1850 kcal with 160g protein.",
			Calories:        &calories,
			Recommendations: "Front-load carbs on training days.",
			IsPublic:        true,
		},
		{
			UserID:      coach.ID,
			Title:       "Deload experiments",
			Type:        models.PostTypeWorkout,
			Description: "Private notes on deload volume, not ready to share yet.",
		},
	}
	for _, p := range posts {
		if err := db.Create(p).Error; err != nil {
			return err
		}
	}

	middleware.Logger.Info("Seeded development data",
		slog.Int("users", 3), slog.Int("sections", 2), slog.Int("posts", len(posts)))
	return nil
}
