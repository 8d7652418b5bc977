package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity       float64 // 时间重力 (1.5)
	WeightHelpful float64 // 3.0
	WeightVisit   float64 // 1.0
	WeightView    float64 // 0.1
	ScaleFactor   float64 // 放大系数 (100)
}

var DefaultConfig = RankConfig{
	Gravity:       1.5,
	WeightHelpful: 3.0,
	WeightVisit:   1.0,
	WeightView:    0.1,
	ScaleFactor:   100.0, // 让分数落在 0-100 区间，像"温度"
}

// CalculateScore ranks a post by engagement, decayed by age at now.
func CalculateScore(createdAt, now time.Time, helpful, visits, views int64) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}

	// 1. 加权互动值：重复浏览只给极小权重，去重访客和“有用”才是主要信号
	weightedSum := float64(helpful)*DefaultConfig.WeightHelpful +
		float64(visits)*DefaultConfig.WeightVisit +
		float64(views)*DefaultConfig.WeightView
	if weightedSum < 0 {
		weightedSum = 0
	}

	// 2. 对数平滑：sum=0 时结果为 0
	logScore := math.Log10(weightedSum + 1)

	// 3. 时间衰减
	decay := math.Pow(hours+2, DefaultConfig.Gravity)

	return logScore * DefaultConfig.ScaleFactor / decay
}
