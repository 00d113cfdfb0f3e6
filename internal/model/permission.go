package model

type Permission string

const (
	PermSurveyCreate      Permission = "survey.create"
	PermSurveyRead        Permission = "survey.read"
	PermSurveyRespond     Permission = "survey.respond"
	PermSurveyResultsRead Permission = "survey.results.read"
	PermSurveyDelete      Permission = "survey.delete"
)

// AllPermissions 全部权限，用于校验配置
var AllPermissions = []Permission{
	PermSurveyCreate,
	PermSurveyRead,
	PermSurveyRespond,
	PermSurveyResultsRead,
	PermSurveyDelete,
}
