package content

// seedItems returns the built-in educational corpus. Bodies are kept in
// Spanish, matching the study material the system was authored for.
// IDs are stable so re-seeding never duplicates entries.
func seedItems() []Item {
	return []Item{
		{
			ID:      "algebra_lineal:introduccion-vectores",
			Subject: "algebra_lineal",
			Title:   "Introducción a Vectores",
			Body: "Un vector es una entidad matemática que tiene magnitud y dirección. " +
				"En álgebra lineal, los vectores se representan como listas ordenadas de números. " +
				"Por ejemplo, v = [3, 4] representa un vector en 2D.",
			Level: LevelBasic,
			Type:  TypeConcept,
		},
		{
			ID:      "algebra_lineal:operaciones-matrices",
			Subject: "algebra_lineal",
			Title:   "Operaciones con Matrices",
			Body: "Las matrices son arreglos rectangulares de números. " +
				"La multiplicación de matrices A×B es posible solo si el número de columnas de A " +
				"es igual al número de filas de B. El resultado es una matriz de dimensión " +
				"(filas de A) × (columnas de B).",
			Level: LevelIntermediate,
			Type:  TypeOperation,
		},
		{
			ID:      "algebra_lineal:espacios-vectoriales",
			Subject: "algebra_lineal",
			Title:   "Espacios Vectoriales",
			Body: "Un espacio vectorial es un conjunto de vectores junto con operaciones de suma " +
				"y multiplicación por escalar que satisfacen ocho axiomas fundamentales: " +
				"asociatividad, conmutatividad, elemento neutro, elemento inverso, etc.",
			Level: LevelAdvanced,
			Type:  TypeTheory,
		},
		{
			ID:      "algebra_lineal:determinantes",
			Subject: "algebra_lineal",
			Title:   "Determinantes",
			Body: "El determinante de una matriz cuadrada es un número que proporciona información " +
				"importante sobre la matriz. Para una matriz 2×2, det(A) = ad - bc. " +
				"Los determinantes nos ayudan a determinar si una matriz es invertible.",
			Level: LevelIntermediate,
			Type:  TypeConcept,
		},
		{
			ID:      "calculo:limites",
			Subject: "calculo",
			Title:   "Límites",
			Body: "Un límite describe el comportamiento de una función cuando la variable " +
				"independiente se acerca a un punto específico. Se denota como " +
				"lim(x→a) f(x) = L, donde L es el valor al que tiende la función.",
			Level: LevelBasic,
			Type:  TypeConcept,
		},
		{
			ID:      "calculo:derivadas",
			Subject: "calculo",
			Title:   "Derivadas",
			Body: "La derivada de una función representa la tasa de cambio instantánea. " +
				"Geométricamente, es la pendiente de la recta tangente a la curva en un punto dado. " +
				"Se calcula como f'(x) = lim(h→0) [f(x+h) - f(x)]/h.",
			Level: LevelIntermediate,
			Type:  TypeOperation,
		},
		{
			ID:      "probabilidad:conceptos-basicos",
			Subject: "probabilidad",
			Title:   "Conceptos Básicos de Probabilidad",
			Body: "La probabilidad mide la incertidumbre de un evento. Varía entre 0 (imposible) " +
				"y 1 (seguro). La probabilidad de un evento A se calcula como " +
				"P(A) = número de casos favorables / número de casos totales.",
			Level: LevelBasic,
			Type:  TypeConcept,
		},
		{
			ID:      "probabilidad:distribuciones",
			Subject: "probabilidad",
			Title:   "Distribuciones de Probabilidad",
			Body: "Una distribución de probabilidad describe cómo se distribuyen las probabilidades " +
				"sobre los valores de una variable aleatoria. Las distribuciones pueden ser " +
				"discretas (binomial, Poisson) o continuas (normal, exponencial).",
			Level: LevelAdvanced,
			Type:  TypeTheory,
		},
	}
}
