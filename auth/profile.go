package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freelancehub/apperr"
	"freelancehub/models"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// profileText lists the free-text profile fields a user may edit directly.
var profileText = map[string]bool{
	"fullName":  true,
	"title":     true,
	"avatarUrl": true,
	"phone":     true,
	"location":  true,
	"website":   true,
	"linkedin":  true,
	"github":    true,
	"bio":       true,
}

// profileSet turns a PATCH body into profile.* writes. Keys outside the
// allow-list and values of the wrong type are dropped; role, email, reviews
// and the counters cannot be changed this way.
func profileSet(body map[string]any) bson.M {
	set := bson.M{}
	for k, v := range body {
		switch {
		case profileText[k]:
			s, ok := v.(string)
			if !ok {
				continue
			}
			if k == "bio" {
				set["profile.bio"] = utils.CleanText(s)
			} else {
				set["profile."+k] = strings.TrimSpace(s)
			}
		case k == "hourlyRate":
			if f, ok := v.(float64); ok && f >= 0 {
				set["profile.hourlyRate"] = f
			}
		case k == "skills":
			raw, ok := v.([]any)
			if !ok {
				continue
			}
			skills := make([]string, 0, len(raw))
			for _, x := range raw {
				if s, ok := x.(string); ok {
					skills = append(skills, s)
				}
			}
			set["profile.skills"] = utils.TrimStrings(skills)
		}
	}
	return set
}

func (s *Service) PatchProfile(ctx context.Context, id primitive.ObjectID, body map[string]any) (*models.Profile, error) {
	set := profileSet(body)
	set["updatedAt"] = s.now()
	u, err := s.accounts.Update(ctx, id, set, nil)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("patch profile: %w", err)
	}
	if u.Role == models.RoleEmployer {
		s.sync.MirrorUser(ctx, u)
	}
	return &u.Profile, nil
}
