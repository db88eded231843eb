package domain

import "time"

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	FirstName    string    `gorm:"type:varchar(150);not null"`
	LastName     string    `gorm:"type:varchar(150);not null"`
	Email        string    `gorm:"type:varchar(254);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

// ProfileModel is the GORM model for the profiles table.
type ProfileModel struct {
	ID     uint      `gorm:"primaryKey;autoIncrement"`
	UserID uint      `gorm:"uniqueIndex;not null"`
	User   UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	About  string    `gorm:"type:text;not null"`
	Photo  string    `gorm:"type:varchar(255);not null"`
}

func (ProfileModel) TableName() string { return "profiles" }

// GroupModel is the GORM model for the groups table.
type GroupModel struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Slug        string     `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string     `gorm:"type:text;not null"`
	CreatorID   *uint      `gorm:"index"`
	Creator     *UserModel `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}

func (GroupModel) TableName() string { return "groups" }

// PostModel is the GORM model for the posts table.
type PostModel struct {
	ID        uint        `gorm:"primaryKey;autoIncrement"`
	Text      string      `gorm:"type:text;not null"`
	AuthorID  uint        `gorm:"not null;index"`
	Author    UserModel   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	GroupID   *uint       `gorm:"index"`
	Group     *GroupModel `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	Image     string      `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time   `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime"`
}

func (PostModel) TableName() string { return "posts" }

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	PostID    uint      `gorm:"not null;index"`
	Post      PostModel `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	AuthorID  uint      `gorm:"not null;index"`
	Author    UserModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (CommentModel) TableName() string { return "comments" }

// FollowModel is the GORM model for the follows table. A row targets either
// an author or a group; the two composite unique indexes keep edges unique
// and NULLs in the unused column never collide.
type FollowModel struct {
	ID         uint        `gorm:"primaryKey;autoIncrement"`
	FollowerID uint        `gorm:"not null;uniqueIndex:uidx_follow_author;uniqueIndex:uidx_follow_group"`
	Follower   UserModel   `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	AuthorID   *uint       `gorm:"uniqueIndex:uidx_follow_author;index;check:chk_follows_not_self,follower_id <> author_id"`
	Author     *UserModel  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	GroupID    *uint       `gorm:"uniqueIndex:uidx_follow_group;index;check:chk_follows_one_target,(author_id IS NULL) <> (group_id IS NULL)"`
	Group      *GroupModel `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time   `gorm:"autoCreateTime"`
}

func (FollowModel) TableName() string { return "follows" }

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&UserModel{},
		&ProfileModel{},
		&GroupModel{},
		&PostModel{},
		&CommentModel{},
		&FollowModel{},
	}
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Username:     m.Username,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ToDomain converts ProfileModel to domain Profile.
func (m *ProfileModel) ToDomain() *Profile {
	return &Profile{
		UserID: m.UserID,
		About:  m.About,
		Photo:  m.Photo,
	}
}

// ToDomain converts GroupModel to domain Group.
func (m *GroupModel) ToDomain() *Group {
	return &Group{
		ID:          m.ID,
		Title:       m.Title,
		Slug:        m.Slug,
		Description: m.Description,
		CreatorID:   m.CreatorID,
		CreatedAt:   m.CreatedAt,
	}
}

// GroupToModel converts domain Group to GroupModel.
func GroupToModel(g *Group) *GroupModel {
	return &GroupModel{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
		CreatorID:   g.CreatorID,
		CreatedAt:   g.CreatedAt,
	}
}

// ToDomain converts PostModel to domain Post. Author and Group are read from
// the preloaded associations when present.
func (m *PostModel) ToDomain() *Post {
	p := &Post{
		ID:             m.ID,
		Text:           m.Text,
		AuthorID:       m.AuthorID,
		AuthorUsername: m.Author.Username,
		GroupID:        m.GroupID,
		Image:          m.Image,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.Group != nil {
		p.GroupSlug = m.Group.Slug
		p.GroupTitle = m.Group.Title
	}
	return p
}

// PostToModel converts domain Post to PostModel.
func PostToModel(p *Post) *PostModel {
	return &PostModel{
		ID:        p.ID,
		Text:      p.Text,
		AuthorID:  p.AuthorID,
		GroupID:   p.GroupID,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToDomain converts CommentModel to domain Comment.
func (m *CommentModel) ToDomain() *Comment {
	return &Comment{
		ID:             m.ID,
		PostID:         m.PostID,
		AuthorID:       m.AuthorID,
		AuthorUsername: m.Author.Username,
		Text:           m.Text,
		CreatedAt:      m.CreatedAt,
	}
}

// ToDomain converts FollowModel to domain Follow.
func (m *FollowModel) ToDomain() *Follow {
	f := &Follow{
		ID:               m.ID,
		FollowerID:       m.FollowerID,
		FollowerUsername: m.Follower.Username,
		AuthorID:         m.AuthorID,
		GroupID:          m.GroupID,
		CreatedAt:        m.CreatedAt,
	}
	if m.Author != nil {
		f.AuthorUsername = m.Author.Username
	}
	if m.Group != nil {
		f.GroupSlug = m.Group.Slug
	}
	return f
}
