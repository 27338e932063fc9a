package model

// Career 职业科普条目，构建期灌入，运行期只读
type Career struct {
	BaseModel
	Title         string `gorm:"size:255;not null" json:"title"`
	Category      string `gorm:"size:100;index" json:"category"`
	Description   string `gorm:"type:text" json:"description"`
	Education     string `gorm:"size:255" json:"education"`      // 通常的学历/培训要求
	AverageSalary int    `gorm:"default:0" json:"averageSalary"` // 年薪中位数（美元）
	GrowthOutlook string `gorm:"size:100" json:"growthOutlook"`  // 就业前景文案
}

func (Career) TableName() string {
	return "careers"
}

// CostOfLiving 城市生活成本条目（月度，美元）
type CostOfLiving struct {
	BaseModel
	City      string `gorm:"size:100;index" json:"city"`
	Region    string `gorm:"size:100;index" json:"region"`
	Housing   int    `gorm:"default:0" json:"housing"`
	Food      int    `gorm:"default:0" json:"food"`
	Transport int    `gorm:"default:0" json:"transport"`
	Utilities int    `gorm:"default:0" json:"utilities"`
}

func (CostOfLiving) TableName() string {
	return "cost_of_living"
}

// MonthlyTotal 四项月度开销合计
func (c *CostOfLiving) MonthlyTotal() int {
	return c.Housing + c.Food + c.Transport + c.Utilities
}
