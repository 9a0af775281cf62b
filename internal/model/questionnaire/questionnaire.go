package questionnaire

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"qindex/internal/pkg/mongodb"
)

// Questionnaire 问卷实体，问题内嵌存储
type Questionnaire struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	CreatedBy   string             `bson:"created_by" json:"created_by"` // 创建人（认证系统用户ID）
	IsActive    bool               `bson:"is_active" json:"is_active"`
	Questions   []Question         `bson:"questions" json:"questions"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// QuestionType 问题类型
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice" // 单选/多选
	QuestionTypeLikertScale    QuestionType = "likert_scale"    // 量表
	QuestionTypeFreeText       QuestionType = "free_text"       // 自由文本
	QuestionTypeYesNo          QuestionType = "yes_no"          // 是/否
)

// Question 内嵌问题
type Question struct {
	QuestionID   string                 `bson:"question_id" json:"question_id"`
	QuestionText string                 `bson:"question_text" json:"question_text"`
	QuestionType QuestionType           `bson:"question_type" json:"question_type"`
	Options      map[string]interface{} `bson:"options,omitempty" json:"options,omitempty"`
	OrderIndex   int                    `bson:"order_index" json:"order_index"`
	IsRequired   bool                   `bson:"is_required" json:"is_required"`
}

// Collection 返回集合名称
func (q *Questionnaire) Collection() string {
	return CollectionQuestionnaires
}

// IndexModels 问卷索引
func (q *Questionnaire) IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{asc("created_by")}},
		{Keys: bson.D{asc("is_active")}},
		{Keys: bson.D{desc("created_at")}},
		{Keys: bson.D{asc("title")}},
	}
}

// EnsureIndexes 创建和维护索引
func (q *Questionnaire) EnsureIndexes(ctx context.Context, db *mongo.Database) ([]string, error) {
	return mongodb.CreateIndexes(ctx, db.Collection(q.Collection()), q.IndexModels())
}
