package services

import "time"

// Clock 提供当前时间，测试中替换为可拨动的时钟
type Clock interface {
	Now() time.Time
}

// RealClock 使用系统时间
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
