package questionnaire

import (
	"go.mongodb.org/mongo-driver/bson"

	"qindex/internal/pkg/mongodb"
)

// 集合名称
const (
	CollectionCompanies             = "companies"
	CollectionQuestionnaires        = "questionnaires"
	CollectionCompanyQuestionnaires = "company_questionnaires"
	CollectionAssignments           = "user_questionnaire_assignments"
	CollectionUsersMetadata         = "users_metadata"
)

// Models 返回需要管理索引的全部模型
// 顺序即索引创建和报告的顺序
func Models() []mongodb.Model {
	return []mongodb.Model{
		&Company{},
		&Questionnaire{},
		&CompanyQuestionnaire{},
		&UserQuestionnaireAssignment{},
		&UserMetadata{},
	}
}

// asc / desc 构造单字段键
func asc(field string) bson.E  { return bson.E{Key: field, Value: 1} }
func desc(field string) bson.E { return bson.E{Key: field, Value: -1} }
