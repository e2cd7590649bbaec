package model

import (
	"learnhub/pkg/model"

	"github.com/shopspring/decimal"
)

// CourseStatus 课程状态
type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

func (s CourseStatus) Valid() bool {
	switch s {
	case CourseDraft, CoursePublished, CourseArchived:
		return true
	}
	return false
}

// CourseType 课程收费类型
type CourseType string

const (
	CourseFree       CourseType = "free"
	CoursePaid       CourseType = "paid"
	CourseMemberOnly CourseType = "member_only"
)

func (t CourseType) Valid() bool {
	switch t {
	case CourseFree, CoursePaid, CourseMemberOnly:
		return true
	}
	return false
}

// Course 课程
type Course struct {
	model.BaseModel
	Slug             string          `gorm:"size:128;uniqueIndex" json:"slug"`
	Title            string          `gorm:"size:255;not null" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`
	CoverImage       string          `gorm:"size:512" json:"coverImage"`
	Status           CourseStatus    `gorm:"size:16;not null;default:draft;index" json:"status"`
	Type             CourseType      `gorm:"size:16;not null;default:paid" json:"type"`
	Price            decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	OriginalPrice    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"originalPrice"`
	Instructor       string          `gorm:"size:64" json:"instructor"`
	MemberAccessible bool            `gorm:"not null;default:false" json:"memberAccessible"`
	ChapterCount     int             `gorm:"not null;default:0" json:"chapterCount"`
	SortOrder        int             `gorm:"not null;default:0" json:"sortOrder"`
	Chapters         []Chapter       `gorm:"foreignKey:CourseID" json:"chapters,omitempty"`
}

func (Course) TableName() string { return "courses" }

// IsFree 免费课程不需要购买
func (c *Course) IsFree() bool {
	return c.Type == CourseFree
}

// MemberCanAccess 会员是否可以学习该课程，会员专享课程总是可以
func (c *Course) MemberCanAccess() bool {
	return c.Type == CourseMemberOnly || c.MemberAccessible
}

// ChapterType 章节类型
type ChapterType string

const (
	ChapterVideo   ChapterType = "video"
	ChapterArticle ChapterType = "article"
)

// Chapter 章节
type Chapter struct {
	model.BaseModel
	CourseID  string      `gorm:"type:uuid;not null;index" json:"courseId"`
	Title     string      `gorm:"size:255;not null" json:"title"`
	Type      ChapterType `gorm:"size:16;not null;default:video" json:"type"`
	SortOrder int         `gorm:"not null;default:0" json:"sortOrder"`
	Duration  int         `gorm:"not null;default:0" json:"duration"` // 秒
	VideoURL  string      `gorm:"size:512" json:"videoUrl,omitempty"`
	Content   string      `gorm:"type:text" json:"content,omitempty"`
	IsFree    bool        `gorm:"not null;default:false" json:"isFree"` // 免费试看
}

func (Chapter) TableName() string { return "chapters" }

// Outline 去掉正文与视频地址，用于未购买用户浏览目录
func (c Chapter) Outline() Chapter {
	if !c.IsFree {
		c.VideoURL = ""
		c.Content = ""
	}
	return c
}
