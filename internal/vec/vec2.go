package vec

import "math"

// Vec2 представляет координаты колонки чанков на горизонтальной плоскости.
// Чанки не складываются по вертикали, поэтому второй осью является Z.
type Vec2 struct {
	X, Z int
}

// FloorDiv выполняет целочисленное деление с округлением вниз.
// В отличие от оператора `/` результат корректен и для отрицательных чисел.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ToChunkCoords преобразует мировые координаты колонки в координаты чанка
func (v Vec2) ToChunkCoords(width int) Vec2 {
	return Vec2{X: FloorDiv(v.X, width), Z: FloorDiv(v.Z, width)}
}

// LocalInChunk возвращает локальные координаты внутри чанка (всегда неотрицательные)
func (v Vec2) LocalInChunk(width int) Vec2 {
	c := v.ToChunkCoords(width)
	return Vec2{X: v.X - width*c.X, Z: v.Z - width*c.Z}
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Z: v.Z + other.Z}
}

// ChebyshevDistance возвращает расстояние Чебышёва (максимум по осям)
func (v Vec2) ChebyshevDistance(other Vec2) int {
	dx := v.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dz := v.Z - other.Z
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// DistanceTo вычисляет евклидово расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dz := float64(v.Z - other.Z)
	return math.Sqrt(dx*dx + dz*dz)
}

// Less задаёт детерминированный порядок (сначала X, затем Z)
func (v Vec2) Less(other Vec2) bool {
	if v.X != other.X {
		return v.X < other.X
	}
	return v.Z < other.Z
}
