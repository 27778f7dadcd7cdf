package tutor

// DemoQueries returns the canned demonstration set: one question per
// knowledge tier, run sequentially through the same pipeline as any
// other query. Student id is left empty so demos never pollute history.
func DemoQueries() []Query {
	return []Query{
		NewQuery("¿Qué es un vector y cómo se representa?", "algebra_lineal", ""),
		NewQuery("No entiendo cómo multiplicar matrices, ¿puedes explicármelo?", "algebra_lineal", ""),
		NewQuery("¿Cuál es la diferencia entre límites y derivadas?", "calculo", ""),
	}
}
