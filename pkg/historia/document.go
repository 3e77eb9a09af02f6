package historia

// Estado is the lifecycle state of a single section.
type Estado string

const (
	EstadoVacia     Estado = "vacia"
	EstadoPropuesta Estado = "propuesta"
	EstadoAceptada  Estado = "aceptada"
	EstadoRechazada Estado = "rechazada"
	EstadoEditada   Estado = "editada"
)

// Accion is the wire name of a user decision on a section.
type Accion string

const (
	AccionAceptar  Accion = "aceptar"
	AccionRechazar Accion = "rechazar"
	AccionEditar   Accion = "editar"
)

// SectionState holds the content and proposal state of one section.
// PendingProposal is set only while Estado == EstadoPropuesta; any accept,
// reject or edit clears it.
type SectionState struct {
	Contenido          string
	Estado             Estado
	PropuestaPendiente string
}

// Proposal is one inbound agent suggestion for a section.
type Proposal struct {
	Seccion   Seccion
	Contenido string
}

// Action is the outbound record of a user decision, emitted by the document
// so the caller can ship it as a section_action message.
type Action struct {
	Seccion   Seccion
	Accion    Accion
	Contenido string
}

// Document owns the ordered section states and the active-section index.
// Exactly one section is active at a time; only the active section may enter
// EstadoPropuesta from an inbound proposal batch. The document is not safe
// for concurrent use; the owning engine serializes access.
type Document struct {
	states      map[Seccion]*SectionState
	activeIndex int
}

func NewDocument() *Document {
	states := make(map[Seccion]*SectionState, len(Secciones))
	for _, s := range Secciones {
		states[s] = &SectionState{Estado: EstadoVacia}
	}
	return &Document{states: states}
}

// ActiveSection returns the section currently eligible for proposals.
func (d *Document) ActiveSection() Seccion {
	return Secciones[d.activeIndex]
}

// ActiveIndex returns the position of the active section.
func (d *Document) ActiveIndex() int {
	return d.activeIndex
}

// State returns a copy of the state for sec, and whether sec is known.
func (d *Document) State(sec Seccion) (SectionState, bool) {
	st, ok := d.states[sec]
	if !ok {
		return SectionState{}, false
	}
	return *st, true
}

// ApplyProposals applies an inbound batch. Entries for unknown sections or
// for any section other than the active one are discarded. The surviving
// entry moves the active section to EstadoPropuesta with the candidate
// content in PropuestaPendiente; Contenido is left untouched until an
// explicit accept. A later entry in the same batch for the same section
// supersedes an earlier one. Returns how many entries were applied.
func (d *Document) ApplyProposals(batch []Proposal) int {
	active := d.ActiveSection()
	applied := 0
	for _, p := range batch {
		if p.Seccion != active || !Valid(p.Seccion) {
			continue
		}
		st := d.states[p.Seccion]
		st.Estado = EstadoPropuesta
		st.PropuestaPendiente = p.Contenido
		applied++
	}
	return applied
}

// Accept promotes the pending proposal (if any) into the section content.
// Idempotent when no proposal is pending: the existing content is kept.
func (d *Document) Accept(sec Seccion) (Action, bool) {
	st, ok := d.states[sec]
	if !ok {
		return Action{}, false
	}
	if st.PropuestaPendiente != "" {
		st.Contenido = st.PropuestaPendiente
	}
	st.Estado = EstadoAceptada
	st.PropuestaPendiente = ""
	return Action{Seccion: sec, Accion: AccionAceptar, Contenido: st.Contenido}, true
}

// Reject discards the pending proposal; the existing content is preserved.
func (d *Document) Reject(sec Seccion) (Action, bool) {
	st, ok := d.states[sec]
	if !ok {
		return Action{}, false
	}
	st.Estado = EstadoRechazada
	st.PropuestaPendiente = ""
	return Action{Seccion: sec, Accion: AccionRechazar}, true
}

// Edit overwrites the section content with operator-provided text. Valid
// from any state. A later proposal may still land in PropuestaPendiente but
// the edited content stays until it is explicitly re-accepted.
func (d *Document) Edit(sec Seccion, contenido string) (Action, bool) {
	st, ok := d.states[sec]
	if !ok {
		return Action{}, false
	}
	st.Contenido = contenido
	st.Estado = EstadoEditada
	st.PropuestaPendiente = ""
	return Action{Seccion: sec, Accion: AccionEditar, Contenido: contenido}, true
}

// Advance moves the active index forward by one, saturating at the last
// section. Section states are not altered.
func (d *Document) Advance() {
	if d.activeIndex < len(Secciones)-1 {
		d.activeIndex++
	}
}

// Retreat moves the active index back by one, saturating at zero.
func (d *Document) Retreat() {
	if d.activeIndex > 0 {
		d.activeIndex--
	}
}

// Snapshot returns the non-empty section contents, keyed by wire id. This is
// what gets shipped to the agent as currentSections.
func (d *Document) Snapshot() map[string]string {
	out := make(map[string]string)
	for _, s := range Secciones {
		if st := d.states[s]; st.Contenido != "" {
			out[string(s)] = st.Contenido
		}
	}
	return out
}
