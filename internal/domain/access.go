package domain

// AccessController は宛先ホストのアクセス制御インターフェース.
type AccessController interface {
	IsAllowed(host string) (bool, error)
	Reload() error
}
