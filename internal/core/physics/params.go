package physics

// Params 是 §4.4 参数表中列出的可配置量，全部带范围钳制
type Params struct {
	Attraction       float32
	Repulsion        float32
	Spring           float32
	Damping          float32
	MaxVelocity      float32
	CollisionRadius  float32
	BoundsSize       float32
	Iterations       int
}

// DefaultParams 返回参数表 Default 列的取值
//
// repulsion 取 Range 列 [0.1, 0.5] 的下界而非表中标注的 0.05：标注值本身
// 落在该字段自己的合法范围之外，下界是离标注值最近、且经得住 Clamp() 复核
// 的取值，与 internal/config.DefaultPhysicsConfig 保持一致。
func DefaultParams() Params {
	return Params{
		Attraction:      0.02,
		Repulsion:       0.1,
		Spring:          0.08,
		Damping:         0.85,
		MaxVelocity:     0.2,
		CollisionRadius: 0.1,
		BoundsSize:      0.5,
		Iterations:      100,
	}
}

// Clamp 返回每个字段都夹到参数表 Range 列区间内的副本（值接收者，不修改
// 调用方持有的原值），便于链式调用
func (p Params) Clamp() Params {
	p.Attraction = clampFloat(p.Attraction, 0.001, 0.1)
	p.Repulsion = clampFloat(p.Repulsion, 0.1, 0.5)
	p.Spring = clampFloat(p.Spring, 0.001, 0.15)
	p.Damping = clampFloat(p.Damping, 0.5, 0.95)
	p.MaxVelocity = clampFloat(p.MaxVelocity, 0.1, 5.0)
	p.CollisionRadius = clampFloat(p.CollisionRadius, 0.1, 1.0)
	p.BoundsSize = clampFloat(p.BoundsSize, 0.1, 2.0)
	if p.Iterations < 1 {
		p.Iterations = 1
	}
	if p.Iterations > 1000 {
		p.Iterations = 1000
	}
	return p
}

// positionCap 是导线上的位置硬上限：bounds_size · 1000（§4.4 步骤 5）
func (p Params) positionCap() float32 {
	return p.BoundsSize * 1000
}

func clampFloat(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
