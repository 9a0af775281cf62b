package questionnaire

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qindex/internal/pkg/mongodb"
)

// UserQuestionnaireAssignment 用户问卷分配，答案内嵌存储
type UserQuestionnaireAssignment struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CompanyQuestionnaireID primitive.ObjectID `bson:"company_questionnaire_id" json:"company_questionnaire_id"`
	UserID                 string             `bson:"user_id" json:"user_id"`         // 认证系统用户ID
	AssignedBy             string             `bson:"assigned_by" json:"assigned_by"` // 认证系统用户ID
	AssignedAt             time.Time          `bson:"assigned_at" json:"assigned_at"`
	Status                 AssignmentStatus   `bson:"status" json:"status"`
	StartedAt              *time.Time         `bson:"started_at,omitempty" json:"started_at,omitempty"`
	CompletedAt            *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Responses              []Response         `bson:"responses" json:"responses"`
}

// AssignmentStatus 分配状态
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"     // 待开始
	AssignmentStatusInProgress AssignmentStatus = "in_progress" // 进行中
	AssignmentStatusCompleted  AssignmentStatus = "completed"   // 已完成
)

// IsValid 检查状态是否有效
func (s AssignmentStatus) IsValid() bool {
	return s == AssignmentStatusPending || s == AssignmentStatusInProgress || s == AssignmentStatusCompleted
}

// Response 内嵌答案
type Response struct {
	QuestionID    string                 `bson:"question_id" json:"question_id"`
	ResponseValue map[string]interface{} `bson:"response_value" json:"response_value"`
	AnsweredAt    time.Time              `bson:"answered_at" json:"answered_at"`
}

// Collection 返回集合名称
func (a *UserQuestionnaireAssignment) Collection() string {
	return CollectionAssignments
}

// IndexModels 用户问卷分配索引
// user_id + company_questionnaire_id 唯一，防止同一用户重复分配同一问卷
func (a *UserQuestionnaireAssignment) IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{asc("user_id")}},
		{Keys: bson.D{asc("company_questionnaire_id")}},
		{Keys: bson.D{asc("status")}},
		{Keys: bson.D{asc("user_id"), asc("status")}},
		{Keys: bson.D{asc("company_questionnaire_id"), asc("status")}},
		{Keys: bson.D{asc("assigned_by")}},
		{Keys: bson.D{desc("assigned_at")}},
		{Keys: bson.D{desc("completed_at")}},
		{
			Keys:    bson.D{asc("user_id"), asc("company_questionnaire_id")},
			Options: options.Index().SetUnique(true),
		},
	}
}

// EnsureIndexes 创建和维护索引
func (a *UserQuestionnaireAssignment) EnsureIndexes(ctx context.Context, db *mongo.Database) ([]string, error) {
	return mongodb.CreateIndexes(ctx, db.Collection(a.Collection()), a.IndexModels())
}
