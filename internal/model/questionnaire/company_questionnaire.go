package questionnaire

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"qindex/internal/pkg/mongodb"
)

// CompanyQuestionnaire 分配给公司的问卷，带有效期
type CompanyQuestionnaire struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CompanyID       primitive.ObjectID `bson:"company_id" json:"company_id"`
	QuestionnaireID primitive.ObjectID `bson:"questionnaire_id" json:"questionnaire_id"`
	AssignedBy      string             `bson:"assigned_by" json:"assigned_by"` // 分配人（认证系统用户ID）
	AssignedAt      time.Time          `bson:"assigned_at" json:"assigned_at"`
	PeriodStart     time.Time          `bson:"period_start" json:"period_start"`
	PeriodEnd       time.Time          `bson:"period_end" json:"period_end"`
	IsActive        bool               `bson:"is_active" json:"is_active"`
}

// Collection 返回集合名称
func (cq *CompanyQuestionnaire) Collection() string {
	return CollectionCompanyQuestionnaires
}

// IndexModels 公司问卷索引
// period_start + period_end 用于按有效期筛选，company_id + is_active 用于列出公司当前问卷
func (cq *CompanyQuestionnaire) IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{asc("company_id")}},
		{Keys: bson.D{asc("questionnaire_id")}},
		{Keys: bson.D{asc("period_start"), asc("period_end")}},
		{Keys: bson.D{asc("is_active")}},
		{Keys: bson.D{asc("company_id"), asc("is_active")}},
		{Keys: bson.D{asc("assigned_by")}},
		{Keys: bson.D{desc("assigned_at")}},
	}
}

// EnsureIndexes 创建和维护索引
func (cq *CompanyQuestionnaire) EnsureIndexes(ctx context.Context, db *mongo.Database) ([]string, error) {
	return mongodb.CreateIndexes(ctx, db.Collection(cq.Collection()), cq.IndexModels())
}
