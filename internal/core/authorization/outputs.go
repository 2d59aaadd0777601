package authorization

import (
	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// UserOutput flattens a user into the field set FilterOutput projects from.
func UserOutput(u *domain.User) Fields {
	return Fields{
		"id":          u.ID,
		"tag":         u.Tag,
		"username":    u.Username,
		"email":       u.Email,
		"features":    u.Features,
		"description": u.Description,
		"picture":     u.Picture,
		"created_at":  u.CreatedAt,
		"updated_at":  u.UpdatedAt,
	}
}

// TuitOutput flattens a tuit, counters included. FilterOutput decides which
// of these survive based on the tuit's status.
func TuitOutput(t *domain.Tuit) Fields {
	return Fields{
		"id":         t.ID,
		"owner_id":   t.OwnerID,
		"parent_id":  t.ParentID,
		"quote_id":   t.QuoteID,
		"body":       t.Body,
		"status":     t.Status,
		"views":      t.Views,
		"likes":      t.Likes,
		"retuits":    t.Retuits,
		"bookmarks":  t.Bookmarks,
		"comments":   t.Comments,
		"quotes":     t.Quotes,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
}

// SessionOutput flattens a session. The token only survives filtering for
// create:session; read:session deliberately omits it.
func SessionOutput(s *domain.Session) Fields {
	return Fields{
		"id":         s.ID,
		"user_id":    s.UserID,
		"token":      s.Token,
		"expires_at": s.ExpiresAt,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	}
}
