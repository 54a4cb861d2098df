package physics

import (
	"math"
	"runtime"
	"sync"

	"github.com/dep2p/graphstream/pkg/types"
)

// connectedSet 收集出现在任意一条边里的 slot，作为 §4.4 步骤 2/3 里
// "flagged connected" 判定的来源；节点自身携带的 FlagConnected 位由调用方
// （codec/simulation）在解帧时写入，内核在这里重新从权威的边集合派生一次，
// 保证物理结果只依赖传入的 (nodes, edges)，不依赖调用方是否记得同步标志位。
func connectedSet(edges []types.Edge) map[types.Slot]bool {
	set := make(map[types.Slot]bool, len(edges)*2)
	for _, e := range edges {
		set[e.Source] = true
		set[e.Target] = true
	}
	return set
}

// Step 是标量参考实现：见 §4.4 步骤 1-5
func Step(nodes []types.Node, edges []types.Edge, params Params) []types.Node {
	params = params.Clamp()
	connected := connectedSet(edges)
	out := make([]types.Node, len(nodes))
	copy(out, nodes)

	forces := make([]types.Vec3, len(nodes))
	accumulateForces(nodes, connected, params, forces, 0, len(nodes))
	integrate(out, forces, params)
	return out
}

// StepParallel 把节点集合切成 GOMAXPROCS 份并行做力累加，积分阶段仍然是
// 逐节点独立的所以顺序无关；两两力的判定必须读全量 nodes，因此每个分片只
// 写自己负责的那段 forces，读的是共享的只读切片。
func StepParallel(nodes []types.Node, edges []types.Edge, params Params) []types.Node {
	params = params.Clamp()
	connected := connectedSet(edges)
	out := make([]types.Node, len(nodes))
	copy(out, nodes)

	forces := make([]types.Vec3, len(nodes))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(nodes) {
		workers = len(nodes)
	}
	if workers <= 1 {
		accumulateForces(nodes, connected, params, forces, 0, len(nodes))
		integrate(out, forces, params)
		return out
	}

	chunk := (len(nodes) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(nodes) {
			break
		}
		end := start + chunk
		if end > len(nodes) {
			end = len(nodes)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			accumulateForces(nodes, connected, params, forces, start, end)
		}(start, end)
	}
	wg.Wait()

	integrate(out, forces, params)
	return out
}

// accumulateForces 为 nodes[begin:end] 里的每个活跃节点计算 forces[i]
//
// 排斥力对所有活跃对 (i, j) 生效；弹簧回复力只在两端都标记为 connected 时
// 叠加。步骤 3 的向心吸引也在这里一并累加，避免第二次遍历节点集合。
func accumulateForces(nodes []types.Node, connected map[types.Slot]bool, params Params, forces []types.Vec3, begin, end int) {
	for i := begin; i < end; i++ {
		ni := nodes[i]
		if !ni.Flags.Active() {
			continue
		}

		var f types.Vec3
		iConnected := connected[ni.Slot]

		for j, nj := range nodes {
			if j == i || !nj.Flags.Active() {
				continue
			}

			dx := ni.Position.X - nj.Position.X
			dy := ni.Position.Y - nj.Position.Y
			dz := ni.Position.Z - nj.Position.Z

			dist := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
			r := dist
			if r < params.CollisionRadius {
				r = params.CollisionRadius
			}

			var ux, uy, uz float32
			if dist > 0 {
				ux, uy, uz = dx/dist, dy/dist, dz/dist
			}

			massI := float32(ni.Mass)
			massJ := float32(nj.Mass)
			repulsionScale := params.Repulsion * massI * massJ / (r * r)
			f.X += repulsionScale * ux
			f.Y += repulsionScale * uy
			f.Z += repulsionScale * uz

			if iConnected && connected[nj.Slot] {
				springScale := params.Spring * (r - 1.0)
				f.X -= springScale * ux
				f.Y -= springScale * uy
				f.Z -= springScale * uz
			}
		}

		if iConnected {
			f.X -= params.Attraction * ni.Position.X
			f.Y -= params.Attraction * ni.Position.Y
			f.Z -= params.Attraction * ni.Position.Z
		}

		forces[i] = sanitizeVec3(f)
	}
}

// integrate 应用 §4.4 步骤 4-5：速度更新+钳制，位置更新+钳制
func integrate(nodes []types.Node, forces []types.Vec3, params Params) {
	posCap := params.positionCap()
	for i := range nodes {
		n := &nodes[i]
		if !n.Flags.Active() {
			continue
		}

		v := types.Vec3{
			X: (n.Velocity.X + forces[i].X) * params.Damping,
			Y: (n.Velocity.Y + forces[i].Y) * params.Damping,
			Z: (n.Velocity.Z + forces[i].Z) * params.Damping,
		}
		v = sanitizeVec3(v)
		v.X = clampFloat(v.X, -params.MaxVelocity, params.MaxVelocity)
		v.Y = clampFloat(v.Y, -params.MaxVelocity, params.MaxVelocity)
		v.Z = clampFloat(v.Z, -params.MaxVelocity, params.MaxVelocity)

		pos := types.Vec3{
			X: n.Position.X + v.X,
			Y: n.Position.Y + v.Y,
			Z: n.Position.Z + v.Z,
		}
		pos = sanitizeVec3(pos)
		pos.X = clampFloat(pos.X, -posCap, posCap)
		pos.Y = clampFloat(pos.Y, -posCap, posCap)
		pos.Z = clampFloat(pos.Z, -posCap, posCap)

		n.Velocity = v
		n.Position = pos
	}
}

// sanitizeVec3 把非有限分量替换为零（§4.4 数值策略：内核从不产出 NaN）
func sanitizeVec3(v types.Vec3) types.Vec3 {
	if !isFinite(v.X) {
		v.X = 0
	}
	if !isFinite(v.Y) {
		v.Y = 0
	}
	if !isFinite(v.Z) {
		v.Z = 0
	}
	return v
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// ScalarKernel adapts Step to pkg/interfaces.Kernel with a fixed parameter set
type ScalarKernel struct {
	Params Params
}

func (k ScalarKernel) Step(nodes []types.Node, edges []types.Edge) []types.Node {
	return Step(nodes, edges, k.Params)
}

// ParallelKernel adapts StepParallel to pkg/interfaces.Kernel with a fixed parameter set
type ParallelKernel struct {
	Params Params
}

func (k ParallelKernel) Step(nodes []types.Node, edges []types.Edge) []types.Node {
	return StepParallel(nodes, edges, k.Params)
}
