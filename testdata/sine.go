view := mathbox.Cartesian(plot.Props{
	"id":    "view",
	"range": [][]float64{{-math.Pi, math.Pi}, {-1, 1}, {-1, 1}},
})
view.Axis(plot.Props{"axis": 1})
view.Axis(plot.Props{"axis": 2})
view.Grid(plot.Props{"axes": []int{1, 2}, "divisions": 8, "opacity": 0.3})
view.Curve(func(x float64) float64 { return math.Sin(x) }, plot.Props{"color": "#3090ff", "width": 3})
view.Label("sin(x)", plot.Props{"position": []float64{2, 0.8, 0}})
