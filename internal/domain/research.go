package domain

// NoSourcesNarrative - текст отчета когда первый слой поиска ничего не нашел
const NoSourcesNarrative = "No sources found."

// ResearchReport - результат глубокого (двухслойного) поиска.
// Sources: сначала первый слой, потом второй, без дедупликации.
type ResearchReport struct {
	Narrative string
	Sources   []Source
}

// EmptyReport - валидный отчет без источников
func EmptyReport() *ResearchReport {
	return &ResearchReport{Narrative: NoSourcesNarrative, Sources: []Source{}}
}

// Subtask - один угол декомпозиции и его результаты поиска
type Subtask struct {
	Index   int // с 1, в порядке декомпозиции
	Focus   string
	Sources []Source
}

// SynthesisReport - результат мультиагентного исследования
type SynthesisReport struct {
	Synthesis string
	Subtasks  []Subtask
}

// AllSources возвращает источники всех подзадач подряд, в порядке подзадач
func (r *SynthesisReport) AllSources() []Source {
	var out []Source
	for _, st := range r.Subtasks {
		out = append(out, st.Sources...)
	}
	return out
}

// Result - ответ на ResearchRequest, заполнено одно из полей в зависимости от режима
type Result struct {
	Mode      Mode
	Layered   *ResearchReport
	Synthesis *SynthesisReport
}
