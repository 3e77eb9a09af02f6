package historia

// Seccion identifies one of the fixed clinical-note sections. The values are
// wire identifiers shared with the agent and stored as-is.
type Seccion string

const (
	InformacionGeneral     Seccion = "informacionGeneral"
	MotivoAtencion         Seccion = "motivoAtencion"
	RevisionSistemas       Seccion = "revisionSistemas"
	Antecedentes           Seccion = "antecedentes"
	ExamenFisico           Seccion = "examenFisico"
	ResultadosParaclinicos Seccion = "resultadosParaclinicos"
	AlertasAlergias        Seccion = "alertasAlergias"
	Diagnosticos           Seccion = "diagnosticos"
	AnalisisPlan           Seccion = "analisisPlan"
	Recomendaciones        Seccion = "recomendaciones"
)

// Secciones is the document order: contexto, motivo, subjetivo (sistemas,
// antecedentes), objetivo (examen, paraclinicos), seguridad, valoración
// (diagnósticos, plan), recomendaciones. Fixed at compile time.
var Secciones = []Seccion{
	InformacionGeneral,
	MotivoAtencion,
	RevisionSistemas,
	Antecedentes,
	ExamenFisico,
	ResultadosParaclinicos,
	AlertasAlergias,
	Diagnosticos,
	AnalisisPlan,
	Recomendaciones,
}

// Labels are the human-readable names shown to the clinician.
var Labels = map[Seccion]string{
	InformacionGeneral:     "Información General",
	MotivoAtencion:         "Motivo de Atención",
	RevisionSistemas:       "Revisión por Sistemas",
	Antecedentes:           "Antecedentes",
	ExamenFisico:           "Examen Físico",
	ResultadosParaclinicos: "Resultados Paraclínicos",
	AlertasAlergias:        "Alertas y Alergias",
	Diagnosticos:           "Diagnósticos",
	AnalisisPlan:           "Análisis y Plan",
	Recomendaciones:        "Recomendaciones",
}

// Valid reports whether s is one of the fixed sections.
func Valid(s Seccion) bool {
	_, ok := Labels[s]
	return ok
}
