package model

import (
	"time"

	"learnhub/pkg/model"
)

// UserProgress 用户在某一章节的学习进度，每个 (user, chapter) 一条
type UserProgress struct {
	model.LedgerModel
	UserID        string     `gorm:"type:uuid;not null;index;uniqueIndex:user_progress_user_chapter_idx" json:"userId"`
	CourseID      string     `gorm:"type:uuid;not null;index" json:"courseId"`
	ChapterID     string     `gorm:"type:uuid;not null;uniqueIndex:user_progress_user_chapter_idx" json:"chapterId"`
	Progress      int        `gorm:"not null" json:"progress"` // 播放位置（秒）
	Duration      int        `gorm:"not null" json:"duration"` // 视频总时长（秒）
	IsCompleted   bool       `gorm:"not null" json:"isCompleted"`
	CompletedAt   *time.Time `json:"completedAt"`
	LastWatchedAt time.Time  `gorm:"not null" json:"lastWatchedAt"`
}

func (UserProgress) TableName() string { return "user_progress" }

// CourseProgress 课程维度的学习进度汇总
type CourseProgress struct {
	CourseID       string         `json:"courseId"`
	ChapterCount   int            `json:"chapterCount"`
	CompletedCount int            `json:"completedCount"`
	Percent        int            `json:"percent"`
	LastChapterID  string         `json:"lastChapterId,omitempty"`
	Chapters       []UserProgress `json:"chapters"`
}
