package i18n

// Kind clasifica un mensaje visible.
type Kind string

const (
	KindError   Kind = "error"
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
)

// Message es un texto a traducir. Key es el texto en ingles; si no hay traduccion se muestra tal cual.
type Message struct {
	Kind   Kind              `json:"kind"`
	Key    string            `json:"key"`
	Params map[string]string `json:"params,omitempty"`
}

func (m Message) Empty() bool {
	return m.Key == ""
}

func Error(key string) Message {
	return Message{Kind: KindError, Key: key}
}

func Success(key string) Message {
	return Message{Kind: KindSuccess, Key: key}
}

// With devuelve una copia con un parametro de interpolacion agregado.
func (m Message) With(name, value string) Message {
	params := make(map[string]string, len(m.Params)+1)
	for k, v := range m.Params {
		params[k] = v
	}
	params[name] = value
	m.Params = params
	return m
}
