package database

import (
	"encoding/json"
	"finlit_backend/internal/model"
	"log"

	"gorm.io/gorm"
)

func intPtr(i int) *int { return &i }

func mustJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// SeedCatalog 将内置的课程/职业/生活成本目录灌入数据库（仅在对应表为空时）
// 目录数据随应用版本发布，运行期只读
func SeedCatalog(db *gorm.DB) error {
	var lessonCount int64
	db.Model(&model.Lesson{}).Count(&lessonCount)
	if lessonCount == 0 {
		for _, l := range defaultLessons() {
			lesson := l
			if err := db.Create(&lesson).Error; err != nil {
				return err
			}
		}
		log.Println("Lesson catalog seeded")
	}

	var careerCount int64
	db.Model(&model.Career{}).Count(&careerCount)
	if careerCount == 0 {
		for _, c := range defaultCareers() {
			career := c
			if err := db.Create(&career).Error; err != nil {
				return err
			}
		}
	}

	var colCount int64
	db.Model(&model.CostOfLiving{}).Count(&colCount)
	if colCount == 0 {
		for _, c := range defaultCostOfLiving() {
			entry := c
			if err := db.Create(&entry).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// ReseedCatalog 清空目录数据后重新灌入，课程内容更新后由运维脚本调用
func ReseedCatalog(db *gorm.DB) error {
	tables := []interface{}{
		&model.LessonQuestion{},
		&model.Lesson{},
		&model.Career{},
		&model.CostOfLiving{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return err
		}
	}
	return SeedCatalog(db)
}

func defaultLessons() []model.Lesson {
	return []model.Lesson{
		{
			LessonID:    "budgeting-basics",
			Title:       "预算入门：钱都去哪了",
			Category:    "budgeting",
			Order:       1,
			Time:        "5 min",
			Description: "认识预算——你的财务GPS，学会记录收入和支出。",
			XPReward:    100,
			Content: mustJSON([]model.ContentBlock{
				{Text: "预算就是一份提前写好的花钱计划：先知道钱从哪来，再决定钱往哪去。"},
				{Text: "很多人把预算叫作\"财务GPS\"（financial GPS）——它不会替你开车，但会在你偏航时提醒你。", MediaURL: "/uploads/lessons/budget-gps.png"},
				{Text: "最简单的 50/30/20 法则：50% 花在必需品，30% 花在想要的东西，20% 存起来。"},
				{Text: "每周花十分钟对一次账，比月底一次性复盘更容易坚持。"},
			}),
			Questions: []model.LessonQuestion{
				{
					QuestionID:          "budgeting-basics-q1",
					QuestionType:        model.QuestionMultipleChoice,
					QuestionText:        "按照 50/30/20 法则，收入中应当储蓄的比例是多少？",
					Options:             mustJSON([]string{"50%", "30%", "20%", "10%"}),
					CorrectAnswer:       mustJSON("20%"),
					RelatedContentIndex: intPtr(2),
					Order:               1,
					Explanation:         "50/30/20 法则建议把 20% 的收入用于储蓄。",
				},
				{
					QuestionID:          "budgeting-basics-q2",
					QuestionType:        model.QuestionTrueFalse,
					QuestionText:        "预算的作用是限制你永远不能买想要的东西。",
					Options:             mustJSON([]string{"True", "False"}),
					CorrectAnswer:       mustJSON("False"),
					RelatedContentIndex: intPtr(0),
					Order:               2,
					Explanation:         "预算是花钱计划，不是禁止消费。",
				},
				{
					QuestionID:          "budgeting-basics-q3",
					QuestionType:        model.QuestionFreeResponse,
					QuestionText:        "课程里把预算比喻成什么？",
					CorrectAnswer:       mustJSON([]string{"financial gps", "gps", "财务GPS"}),
					RelatedContentIndex: intPtr(1),
					Order:               3,
					Explanation:         "预算像财务GPS，在偏离计划时提醒你。",
				},
			},
		},
		{
			LessonID:    "saving-smart",
			Title:       "聪明储蓄：先付给自己",
			Category:    "saving",
			Order:       2,
			Time:        "4 min",
			Description: "理解复利的威力，养成拿到钱先存一部分的习惯。",
			XPReward:    100,
			Content: mustJSON([]model.ContentBlock{
				{Text: "\"先付给自己\"的意思是：收入一到手，先把储蓄的部分转走，剩下的才拿来消费。"},
				{Text: "复利是利息再生利息。越早开始存，时间替你赚的钱越多。", MediaURL: "/uploads/lessons/compound-curve.png"},
				{Text: "应急基金的目标通常是 3 到 6 个月的基本开销，放在随取随用的账户里。"},
			}),
			Questions: []model.LessonQuestion{
				{
					QuestionID:          "saving-smart-q1",
					QuestionType:        model.QuestionMultipleChoice,
					QuestionText:        "\"先付给自己\"指的是什么？",
					Options:             mustJSON([]string{"先还清所有债务", "收入到手先转走储蓄部分", "先买想要的东西奖励自己", "先交房租"}),
					CorrectAnswer:       mustJSON("收入到手先转走储蓄部分"),
					RelatedContentIndex: intPtr(0),
					Order:               1,
				},
				{
					QuestionID:          "saving-smart-q2",
					QuestionType:        model.QuestionTrueFalse,
					QuestionText:        "复利意味着利息本身也会产生利息。",
					Options:             mustJSON([]string{"True", "False"}),
					CorrectAnswer:       mustJSON("True"),
					RelatedContentIndex: intPtr(1),
					Order:               2,
				},
				{
					QuestionID:          "saving-smart-q3",
					QuestionType:        model.QuestionFreeResponse,
					QuestionText:        "专门应对突发支出的那笔储蓄叫什么？",
					CorrectAnswer:       mustJSON([]string{"emergency fund", "应急基金", "应急金"}),
					RelatedContentIndex: intPtr(2),
					Order:               3,
				},
			},
		},
		{
			LessonID:    "credit-101",
			Title:       "信用入门：借钱的代价",
			Category:    "credit",
			Order:       1,
			Time:        "6 min",
			Description: "了解信用分数、信用卡利息和按时还款的重要性。",
			XPReward:    120,
			Content: mustJSON([]model.ContentBlock{
				{Text: "信用分数是金融机构对你还款可靠程度的打分，分数越高借钱成本越低。"},
				{Text: "信用卡不是免费的钱：没有全额还清的部分会按年化利率计息，通常超过 20%。"},
				{Text: "按时还款是影响信用分数最大的单一因素，哪怕只还最低还款额也比逾期好。"},
			}),
			Questions: []model.LessonQuestion{
				{
					QuestionID:          "credit-101-q1",
					QuestionType:        model.QuestionMultipleChoice,
					QuestionText:        "对信用分数影响最大的因素是？",
					Options:             mustJSON([]string{"持卡数量", "按时还款记录", "年收入", "学历"}),
					CorrectAnswer:       mustJSON("按时还款记录"),
					RelatedContentIndex: intPtr(2),
					Order:               1,
				},
				{
					QuestionID:          "credit-101-q2",
					QuestionType:        model.QuestionTrueFalse,
					QuestionText:        "只要按时还最低还款额，信用卡剩余欠款就不会产生利息。",
					Options:             mustJSON([]string{"True", "False"}),
					CorrectAnswer:       mustJSON("False"),
					RelatedContentIndex: intPtr(1),
					Order:               2,
				},
			},
		},
	}
}

func defaultCareers() []model.Career {
	return []model.Career{
		{Title: "注册护士", Category: "healthcare", Description: "在医院或诊所为病人提供护理。", Education: "护理学士学位", AverageSalary: 81000, GrowthOutlook: "增长快于平均"},
		{Title: "软件开发工程师", Category: "technology", Description: "设计并编写应用程序和系统。", Education: "计算机相关学士学位或同等经验", AverageSalary: 110000, GrowthOutlook: "增长远快于平均"},
		{Title: "电工", Category: "trades", Description: "安装和维护建筑电气系统。", Education: "学徒培训 + 执业执照", AverageSalary: 60000, GrowthOutlook: "稳定增长"},
		{Title: "平面设计师", Category: "creative", Description: "为品牌和媒体制作视觉内容。", Education: "设计相关学位或作品集", AverageSalary: 53000, GrowthOutlook: "平均水平"},
		{Title: "财务分析师", Category: "finance", Description: "分析投资与经营数据，辅助决策。", Education: "金融/经济学士学位", AverageSalary: 85000, GrowthOutlook: "增长快于平均"},
	}
}

func defaultCostOfLiving() []model.CostOfLiving {
	return []model.CostOfLiving{
		{City: "New York", Region: "Northeast", Housing: 2400, Food: 600, Transport: 130, Utilities: 180},
		{City: "Austin", Region: "South", Housing: 1500, Food: 450, Transport: 220, Utilities: 160},
		{City: "Chicago", Region: "Midwest", Housing: 1600, Food: 480, Transport: 105, Utilities: 150},
		{City: "Phoenix", Region: "West", Housing: 1300, Food: 430, Transport: 210, Utilities: 200},
		{City: "Columbus", Region: "Midwest", Housing: 1100, Food: 400, Transport: 180, Utilities: 140},
	}
}
